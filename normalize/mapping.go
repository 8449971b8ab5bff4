package normalize

import (
	"errors"
	"fmt"
	"sort"
)

// FieldSpec locates one canonical field in a source record. An empty Locator
// means the source has no equivalent field.
type FieldSpec struct {
	Locator  string
	Required bool
}

// Col is shorthand for an optional FieldSpec.
func Col(locator string) FieldSpec {
	return FieldSpec{Locator: locator}
}

// Req is shorthand for a required FieldSpec.
func Req(locator string) FieldSpec {
	return FieldSpec{Locator: locator, Required: true}
}

// FieldMap maps canonical field names to source locators.
type FieldMap map[string]FieldSpec

// Names returns the canonical names in a stable order.
func (m FieldMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mapping is the declarative per-source extraction table. Prices are routed
// through the price parser, Fields are trimmed text.
type Mapping struct {
	Prices FieldMap
	Fields FieldMap
}

// ConfigError reports a Mapping that can never extract correctly.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid mapping for %s: %s", e.Field, e.Reason)
}

// Validate checks the mapping once at startup. Required fields need a
// locator and every name must be canonical for its table.
func (m Mapping) Validate() error {
	var errs []error
	check := func(table FieldMap, known map[string]bool, kind string) {
		for _, name := range table.Names() {
			spec := table[name]
			if !known[name] {
				errs = append(errs, &ConfigError{Field: name, Reason: "not a canonical " + kind + " field"})
				continue
			}
			if spec.Required && spec.Locator == "" {
				errs = append(errs, &ConfigError{Field: name, Reason: "required field has no locator"})
			}
		}
	}
	check(m.Prices, priceFields, "price")
	check(m.Fields, textFields, "text")

	if _, ok := m.Fields[FieldProductID]; !ok {
		errs = append(errs, &ConfigError{Field: FieldProductID, Reason: "missing from text fields"})
	}
	return errors.Join(errs...)
}
