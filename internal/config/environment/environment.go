package environment

import (
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/compute/metadata"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/models"
)

const metadataProbeTimeout = 2 * time.Second

// Getenv matches os.Getenv. Detection takes it as a parameter so callers can
// substitute the process environment.
type Getenv func(string) string

// metadataProbes are consulted in order when no environment variable
// identifies the platform. Replaced in tests.
var metadataProbes = []struct {
	platform models.EnvironmentPlatform
	probe    func() bool
}{
	{models.GCP, checkGCPMetadata},
	{models.AWS, checkAWSMetadata},
	{models.Azure, checkAzureMetadata},
}

// DetectWorkloadPlatform returns the platform able to hand this process a
// workload identity. CI systems win over the cloud they happen to run on,
// since their tokens identify the pipeline rather than the runner.
func DetectWorkloadPlatform(getenv Getenv) models.EnvironmentPlatform {
	if getenv == nil {
		getenv = os.Getenv
	}

	if platform, ok := DetectCI(getenv); ok {
		return platform
	}

	return DetectPlatform(getenv)
}

// DetectCI recognises CI systems that issue OIDC tokens to jobs.
func DetectCI(getenv Getenv) (models.EnvironmentPlatform, bool) {
	switch {
	case isGitHubActions(getenv):
		return models.GitHubActions, true
	case len(getenv("GITLAB_CI")) > 0:
		return models.GitLabCI, true
	case len(getenv("BITBUCKET_STEP_OIDC_TOKEN")) > 0:
		return models.Bitbucket, true
	case len(getenv("SPACELIFT_OIDC_TOKEN")) > 0:
		return models.Spacelift, true
	}
	return "", false
}

// DetectPlatform detects the cloud platform or environment
func DetectPlatform(getenv Getenv) models.EnvironmentPlatform {
	if getenv == nil {
		getenv = os.Getenv
	}

	// Check for AWS
	if isAWS(getenv) {
		return models.AWS
	}

	// Check for GCP
	if isGCP(getenv) {
		return models.GCP
	}

	// Check for Azure
	if isAzure(getenv) {
		return models.Azure
	}

	for _, candidate := range metadataProbes {
		if candidate.probe() {
			logrus.WithField("platform", candidate.platform).Debugln("Platform detected from metadata service")
			return candidate.platform
		}
	}

	// Check for Kubernetes
	if isKubernetes(getenv) {
		return models.Kubernetes
	}

	// Default to local/unknown
	return models.Local
}

func isGitHubActions(getenv Getenv) bool {
	return strings.EqualFold(getenv("GITHUB_ACTIONS"), "true") &&
		len(getenv("ACTIONS_ID_TOKEN_REQUEST_URL")) > 0
}

// isAWS checks if we're running on AWS
func isAWS(getenv Getenv) bool {
	// Check for AWS environment variables
	if len(getenv("AWS_REGION")) > 0 || len(getenv("AWS_DEFAULT_REGION")) > 0 {
		return true
	}

	if len(getenv("AWS_LAMBDA_FUNCTION_NAME")) > 0 || len(getenv("AWS_EXECUTION_ENV")) > 0 {
		return true
	}

	// ECS and EKS pod identity hand out credentials through these
	if len(getenv("AWS_CONTAINER_CREDENTIALS_FULL_URI")) > 0 || len(getenv("AWS_WEB_IDENTITY_TOKEN_FILE")) > 0 {
		return true
	}

	return false
}

// isGCP checks if we're running on Google Cloud Platform
func isGCP(getenv Getenv) bool {
	// Check for GCP environment variables
	if len(getenv("GOOGLE_CLOUD_PROJECT")) > 0 || len(getenv("GCLOUD_PROJECT")) > 0 {
		return true
	}

	if len(getenv("FUNCTION_NAME")) > 0 || len(getenv("K_SERVICE")) > 0 {
		return true
	}

	return false
}

// isAzure checks if we're running on Microsoft Azure
func isAzure(getenv Getenv) bool {
	// Check for Azure environment variables
	if len(getenv("AZURE_FUNCTIONS_ENVIRONMENT")) > 0 {
		return true
	}

	if len(getenv("WEBSITE_SITE_NAME")) > 0 || len(getenv("IDENTITY_ENDPOINT")) > 0 {
		return true
	}

	return false
}

// isKubernetes checks if we're running in a Kubernetes environment
func isKubernetes(getenv Getenv) bool {
	// Check for Kubernetes environment variables
	if len(getenv("KUBERNETES_SERVICE_HOST")) > 0 {
		return true
	}

	// Check for Kubernetes service account token
	if _, err := os.Stat("/var/run/secrets/kubernetes.io/serviceaccount/token"); err == nil {
		return true
	}

	return false
}

// checkAWSMetadata attempts to contact AWS metadata service. IMDSv2 answers
// the token PUT even when the v1 paths are disabled.
func checkAWSMetadata() bool {
	client := resty.New().SetTimeout(metadataProbeTimeout)
	resp, err := client.R().
		SetHeader("X-aws-ec2-metadata-token-ttl-seconds", "60").
		Put("http://169.254.169.254/latest/api/token")
	if err != nil {
		return false
	}
	return resp.StatusCode() == http.StatusOK
}

// checkGCPMetadata attempts to contact GCP metadata service
func checkGCPMetadata() bool {
	return metadata.OnGCE()
}

// checkAzureMetadata attempts to contact Azure metadata service
func checkAzureMetadata() bool {
	client := resty.New().SetTimeout(metadataProbeTimeout)
	resp, err := client.R().
		SetHeader("Metadata", "true").
		Get("http://169.254.169.254/metadata/instance?api-version=2021-02-01")
	if err != nil {
		return false
	}
	return resp.StatusCode() == http.StatusOK
}
