package models

// EnvironmentPlatform enum
type EnvironmentPlatform string

const (
	AWS        EnvironmentPlatform = "aws"
	GCP        EnvironmentPlatform = "gcp"
	Azure      EnvironmentPlatform = "azure"
	Kubernetes EnvironmentPlatform = "kubernetes"
	Local      EnvironmentPlatform = "local"

	// CI systems that hand out OIDC tokens to jobs
	GitHubActions EnvironmentPlatform = "github"
	GitLabCI      EnvironmentPlatform = "gitlab"
	Bitbucket     EnvironmentPlatform = "bitbucket"
	Spacelift     EnvironmentPlatform = "spacelift"
)

// FederationProvider returns the provider selector able to mint a workload
// token on this platform, or an empty string when none applies.
func (p EnvironmentPlatform) FederationProvider() string {
	switch p {
	case AWS, GCP, GitHubActions, GitLabCI, Bitbucket, Spacelift:
		return string(p)
	case Azure:
		return "azuresmi"
	default:
		return ""
	}
}

func (p EnvironmentPlatform) IsCI() bool {
	switch p {
	case GitHubActions, GitLabCI, Bitbucket, Spacelift:
		return true
	}
	return false
}
