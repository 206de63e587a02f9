package federation

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/models"
)

const (
	AwsProviderName = "aws"

	defaultAwsRegion      = "us-east-1"
	stsServiceName        = "sts"
	getCallerIdentityBody = "Action=GetCallerIdentity&Version=2011-06-15"

	awsTenantHeader  = "x-britive-workload-aws-tenant"
	awsExpiresHeader = "x-britive-expires"
)

// awsProvider signs a GetCallerIdentity request with the caller's AWS
// credentials. The service replays the request against STS to learn the
// caller's identity without ever seeing the credentials.
type awsProvider struct {
	tenant   string
	profile  string
	duration time.Duration
	config   *models.BasicConfig

	loadConfig func(ctx context.Context) (aws.Config, error)
	signer     *v4.Signer
	now        func() time.Time
}

func newAwsProvider(params Params) (Provider, error) {
	if len(params.Tenant) == 0 {
		return nil, apierror.New(apierror.KindFederationTokenUnavailable,
			"aws federation needs the tenant name to bind the signed request")
	}

	p := &awsProvider{
		tenant:   params.Tenant,
		profile:  params.Argument,
		duration: params.duration(),
		config:   params.Config,
		signer:   v4.NewSigner(),
		now:      time.Now,
	}
	p.loadConfig = p.createAwsConfig

	return p, nil
}

func (p *awsProvider) Name() string {
	return AwsProviderName
}

func (p *awsProvider) createAwsConfig(ctx context.Context) (aws.Config, error) {

	awsOptions := []func(*config.LoadOptions) error{}

	awsProfile := p.profile
	if len(awsProfile) == 0 {
		awsProfile, _ = p.config.GetString("profile")
	}

	accessKeyID, foundAccessKey := p.config.GetString("access_key_id")
	secretAccessKey, foundSecret := p.config.GetString("secret_access_key")

	if len(awsProfile) > 0 {
		logrus.WithField("profile", awsProfile).Debugln("Using shared AWS config profile")
		awsOptions = append(awsOptions, config.WithSharedConfigProfile(awsProfile))
	} else if foundAccessKey && foundSecret {
		logrus.Debugln("Using static AWS credentials")
		sessionToken, _ := p.config.GetString("session_token")
		awsOptions = append(awsOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken),
		))
	} else {
		logrus.Debugln("No AWS credentials provided, using the default credential chain")
	}

	if region, found := p.config.GetString("region"); found && len(region) > 0 {
		awsOptions = append(awsOptions, config.WithRegion(region))
	}

	if imdsDisable, found := p.config.GetBool("imds_disable"); found && imdsDisable {
		logrus.Debugln("Disabling IMDS for AWS credentials")
		awsOptions = append(awsOptions, config.WithEC2IMDSClientEnableState(imds.ClientDisabled))
	}

	awsSdkConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsSdkConfig, nil
}

func (p *awsProvider) Token(ctx context.Context) (Token, error) {
	awsConfig, err := p.loadConfig(ctx)
	if err != nil {
		return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "aws")
	}

	if awsConfig.Credentials == nil {
		return Token{}, apierror.New(apierror.KindFederationTokenUnavailable, "aws: no credential provider configured")
	}

	creds, err := awsConfig.Credentials.Retrieve(ctx)
	if err != nil {
		return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "aws: unable to retrieve credentials")
	}

	region := awsConfig.Region
	if len(region) == 0 {
		region = defaultAwsRegion
	}

	return p.sign(ctx, creds, region)
}

// sign builds the AWS:: token for the given credentials.
func (p *awsProvider) sign(ctx context.Context, creds aws.Credentials, region string) (Token, error) {
	now := p.now().UTC()
	expires := now.Add(p.duration)
	endpoint := stsEndpoint(region)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(getCallerIdentityBody))
	if err != nil {
		return Token{}, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req.Header.Set(awsTenantHeader, p.tenant)
	req.Header.Set(awsExpiresHeader, expires.Format(time.RFC3339))

	payloadHash := sha256.Sum256([]byte(getCallerIdentityBody))

	// Sets X-Amz-Date, X-Amz-Security-Token for temporary credentials and
	// the Authorization header.
	if err := p.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(payloadHash[:]), stsServiceName, region, now); err != nil {
		return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "aws: signing failed")
	}

	headers := make(map[string]string, len(req.Header))
	for key := range req.Header {
		headers[key] = req.Header.Get(key)
	}

	encodedHeaders, err := json.Marshal(headers)
	if err != nil {
		return Token{}, err
	}

	envelope, err := json.Marshal(map[string]string{
		"iam_request_url":     base64.StdEncoding.EncodeToString([]byte(endpoint)),
		"iam_request_body":    base64.StdEncoding.EncodeToString([]byte(getCallerIdentityBody)),
		"iam_request_headers": base64.StdEncoding.EncodeToString(encodedHeaders),
	})
	if err != nil {
		return Token{}, err
	}

	logrus.WithFields(logrus.Fields{
		"region":  region,
		"expires": expires,
	}).Debugln("Signed AWS federation request")

	return Token{
		Value:  AWSPrefix + base64.URLEncoding.EncodeToString(envelope),
		Expiry: expires,
	}, nil
}

// stsEndpoint uses the global endpoint for us-east-1 and the regional one
// elsewhere so the signing region always matches the endpoint.
func stsEndpoint(region string) string {
	if region == defaultAwsRegion {
		return "https://sts.amazonaws.com/"
	}
	return fmt.Sprintf("https://sts.%s.amazonaws.com/", region)
}

func init() {
	Register(AwsProviderName, newAwsProvider)
}
