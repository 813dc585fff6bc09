package cli

import "github.com/alecthomas/kong"

type CLI struct {
	Run          Run              `kong:"cmd,help='Run the shared runtime.'"`
	VerifyConfig VerifyConfig     `kong:"cmd,help='Validate a configuration file and print the effective settings.'"`
	Resolve      Resolve          `kong:"cmd,help='Resolve a hostname through the configured DNS strategy.'"`
	Health       Health           `kong:"cmd,help='Check the metrics endpoint health.'"`
	Version      kong.VersionFlag `kong:"help='Print version.',short='v'"`
}
