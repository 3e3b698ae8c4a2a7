package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"
)

var (
	// ErrIncomplete indicates one or more required profile fields are empty
	ErrIncomplete = errors.New("registration profile incomplete")
)

// Profile holds the personal details the vendor requires before issuing a
// download URL. It is sent to exactly one endpoint and otherwise never leaves
// the local config file.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Country   string
	State     string
	City      string
	Street    string
}

// field order is the prompt order and the file order.
var fields = []struct {
	key      string
	label    string
	required bool
	get      func(*Profile) *string
}{
	{"FIRST_NAME", "First name", true, func(p *Profile) *string { return &p.FirstName }},
	{"LAST_NAME", "Last name", true, func(p *Profile) *string { return &p.LastName }},
	{"EMAIL", "Email", true, func(p *Profile) *string { return &p.Email }},
	{"PHONE", "Phone", false, func(p *Profile) *string { return &p.Phone }},
	{"COUNTRY", "Country code", true, func(p *Profile) *string { return &p.Country }},
	{"STATE", "State/province", false, func(p *Profile) *string { return &p.State }},
	{"CITY", "City", false, func(p *Profile) *string { return &p.City }},
	{"STREET", "Street address", true, func(p *Profile) *string { return &p.Street }},
}

// Validate checks the required fields and reports every missing one at once.
func (p *Profile) Validate() error {
	var missing []string
	for _, f := range fields {
		if f.required && strings.TrimSpace(*f.get(p)) == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Save writes the profile to path as key=value lines. Values are quoted so
// they survive '=' and whitespace on reload. The file is created with
// owner-only permissions; there is no encryption beyond that.
func (p *Profile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s=%s\n", f.key, strconv.Quote(*f.get(p)))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// Read loads a previously saved profile from path.
func Read(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	var p Profile
	for _, f := range fields {
		*f.get(&p) = env[f.key]
	}
	return &p, nil
}

// Load returns the stored profile, prompting for a fresh one when none exists
// or when reconfigure is set. A freshly prompted profile is validated and
// persisted before being returned.
func Load(path string, reconfigure bool, prompter Prompter) (*Profile, error) {
	if !reconfigure {
		if p, err := Read(path); err == nil {
			return p, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	p, err := prompt(prompter)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.Save(path); err != nil {
		return nil, err
	}
	return p, nil
}

func prompt(prompter Prompter) (*Profile, error) {
	var p Profile
	for _, f := range fields {
		label := f.label
		if !f.required {
			label += " (optional)"
		}
		v, err := prompter.Ask(label)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		*f.get(&p) = strings.TrimSpace(v)
	}
	return &p, nil
}
