package constant

import "fmt"

const Version = "v0.2.0"

var Commit = ""

func GetVersion() string {
	if Commit != "" {
		return fmt.Sprintf("netblock version %s, commit: %s", Version, Commit)
	}
	return fmt.Sprintf("netblock version %s", Version)
}
