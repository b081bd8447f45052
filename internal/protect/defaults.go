// Package protect decides which repository paths persona artifacts may not touch.
package protect

// Paths no generated commit may write: CI definitions, git internals and secret stores.
var defaultGlobs = []string{
	".git/**",
	".github/workflows/**",
	"**/.env",
	"**/.env.*",
	"**/.ssh/**",
	"**/secrets/**",
	"**/credentials/**",
	"**/certs/**",
}

// Key material, matched on extension regardless of directory.
var defaultExtensions = []string{
	".pem", ".key", ".crt", ".cer",
	".p12", ".pfx", ".jks", ".keystore",
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(defaultGlobs)+len(defaultExtensions))
	for _, g := range defaultGlobs {
		rules = append(rules, Rule{Kind: KindGlob, Value: g})
	}
	for _, ext := range defaultExtensions {
		rules = append(rules, Rule{Kind: KindExtension, Value: ext})
	}
	return rules
}
