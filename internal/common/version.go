package common

import (
	"fmt"
)

const userAgentProduct = "britive-go"

func GetVersion() string {
	version, gitCommit, ok := GetModuleBuildInfo()
	if ok {
		if len(gitCommit) == 0 {
			return version
		}
		return fmt.Sprintf("%s (%s)", version, gitCommit)
	}
	return "unknown"
}

// UserAgent is sent on every API call, e.g. britive-go/v1.2.0
func UserAgent() string {
	version, _, ok := GetModuleBuildInfo()
	if !ok || len(version) == 0 || version == "(devel)" {
		version = Version
	}
	return fmt.Sprintf("%s/%s", userAgentProduct, version)
}
