package formschema

// FormatConfig carries the display formatting a renderer applies to date
// and number controls. It is passed explicitly rather than read from a
// shared settings store so the engine stays testable in isolation.
type FormatConfig struct {
	DateFormat        string `json:"dateFormat" yaml:"dateFormat"`
	DecimalSeparator  string `json:"decimalSeparator" yaml:"decimalSeparator"`
	ThousandSeparator string `json:"thousandSeparator" yaml:"thousandSeparator"`
}

// DefaultFormat returns the formatting applied when a caller supplies none.
func DefaultFormat() FormatConfig {
	return FormatConfig{DateFormat: "2006-01-02", DecimalSeparator: ".", ThousandSeparator: ","}
}
