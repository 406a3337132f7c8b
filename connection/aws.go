package connection

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/dnscache"
	"golang.org/x/sync/semaphore"
)

const defaultAwsRegion = "us-east-1"

// AwsConnection holds the credentials and client settings used to access S3.
// Any property which is not set falls back to the AWS SDK default credential chain
// (shared config/credentials files, instance role etc.)
type AwsConnection struct {
	Region                *string `hcl:"region"`
	Profile               *string `hcl:"profile"`
	AccessKey             *string `hcl:"access_key"`
	SecretKey             *string `hcl:"secret_key"`
	SessionToken          *string `hcl:"session_token"`
	MaxErrorRetryAttempts *int    `hcl:"max_error_retry_attempts"`
	// minimum retry delay in milliseconds
	MinErrorRetryDelay *int    `hcl:"min_error_retry_delay"`
	EndpointUrl        *string `hcl:"endpoint_url"`
	S3ForcePathStyle   *bool   `hcl:"s3_force_path_style"`
	// max number of parallel DNS lookups made by the shared HTTP client
	DnsLookupMaxParallel *int `hcl:"dns_lookup_max_parallel"`
	// max number of connections per host, 0 for no limit
	MaxConnsPerHost *int `hcl:"max_conns_per_host"`
}

func (c *AwsConnection) Validate() error {
	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("access_key set without secret_key")
	}

	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("secret_key set without access_key")
	}

	if c.MinErrorRetryDelay != nil && *c.MinErrorRetryDelay < 1 {
		return fmt.Errorf("min_error_retry_delay must be greater than or equal to 1")
	}

	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		return fmt.Errorf("max_error_retry_attempts must be greater than or equal to 1")
	}

	return nil
}

func (c *AwsConnection) Identifier() string {
	return "aws"
}

// GetClientConfiguration builds an aws.Config from the connection
func (c *AwsConnection) GetClientConfiguration(ctx context.Context) (*aws.Config, error) {
	var configOptions []func(*config.LoadOptions) error

	// profile
	if c.Profile != nil {
		configOptions = append(configOptions, config.WithSharedConfigProfile(aws.ToString(c.Profile)))
	}

	// access keys
	if c.AccessKey != nil && c.SecretKey != nil {
		provider := credentials.NewStaticCredentialsProvider(aws.ToString(c.AccessKey), aws.ToString(c.SecretKey), aws.ToString(c.SessionToken))
		configOptions = append(configOptions, config.WithCredentialsProvider(provider))
	}

	// shared http client
	configOptions = append(configOptions, config.WithHTTPClient(c.httpClient()))

	if c.Region != nil {
		configOptions = append(configOptions, config.WithRegion(*c.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	// if no region from config or the shared config files, apply the default region
	if cfg.Region == "" {
		cfg.Region = defaultAwsRegion
	}

	// retry handling
	maxRetries := 9
	if c.MaxErrorRetryAttempts != nil {
		maxRetries = *c.MaxErrorRetryAttempts
	}
	var minRetryDelay = 25 * time.Millisecond
	if c.MinErrorRetryDelay != nil {
		minRetryDelay = time.Duration(*c.MinErrorRetryDelay) * time.Millisecond
	}

	retryer := retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = maxRetries
		o.MaxBackoff = 5 * time.Minute
		o.RateLimiter = NoOpRateLimit{}
		o.Backoff = NewExponentialJitterBackoff(minRetryDelay, maxRetries)
	})
	cfg.Retryer = func() aws.Retryer {
		// UnknownError is the code returned for a 408 from the aws go sdk
		return retry.AddWithErrorCodes(retryer, "UnknownError")
	}

	return &cfg, nil
}

// S3Client returns an S3 client for the connection, honouring any custom endpoint
func (c *AwsConnection) S3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := c.GetClientConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(*cfg, func(o *s3.Options) {
		if c.EndpointUrl != nil && *c.EndpointUrl != "" {
			o.BaseEndpoint = c.EndpointUrl
		}
		if c.S3ForcePathStyle != nil {
			o.UsePathStyle = *c.S3ForcePathStyle
		}
	})
	return client, nil
}

var (
	httpClientOnce   sync.Once
	sharedHTTPClient aws.HTTPClient
)

func (c *AwsConnection) httpClient() aws.HTTPClient {
	httpClientOnce.Do(func() {
		dnsLookupMaxParallel := 25
		if c.DnsLookupMaxParallel != nil {
			dnsLookupMaxParallel = *c.DnsLookupMaxParallel
		}
		maxConnsPerHost := 5000
		if c.MaxConnsPerHost != nil {
			maxConnsPerHost = *c.MaxConnsPerHost
		}
		sharedHTTPClient = newHTTPClient(dnsLookupMaxParallel, maxConnsPerHost, 5*time.Minute)
	})
	return sharedHTTPClient
}

// newHTTPClient builds a single HTTP client shared by all S3 clients.
// Listing and downloading thousands of small objects in parallel creates a DNS lookup per request,
// so lookups are cached and the number of parallel lookups is limited.
func newHTTPClient(dnsLookupMaxParallel, maxConnsPerHost int, dnsCacheRefreshInterval time.Duration) aws.HTTPClient {
	var resolver = &dnscache.Resolver{}
	if dnsCacheRefreshInterval > 0 {
		go func() {
			t := time.NewTicker(dnsCacheRefreshInterval)
			defer t.Stop()
			for range t.C {
				resolver.Refresh(true)
			}
		}()
	}

	client := awshttp.NewBuildableClient()

	// limit the max connections per host, but only if set - the AWS SDK default is no limit
	if maxConnsPerHost > 0 {
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = maxConnsPerHost
		})
	}

	sem := semaphore.NewWeighted(int64(dnsLookupMaxParallel))
	dialer := client.GetDialer()

	client = client.WithTransportOptions(func(tr *http.Transport) {
		tr.DialContext = func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			sem.Release(1)
			if err != nil {
				return nil, err
			}

			// try each address until we manage to create a connection
			for _, ip := range ips {
				conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					break
				}
			}
			return
		}
	})

	return client
}

// NoOpRateLimit https://github.com/aws/aws-sdk-go-v2/issues/543
type NoOpRateLimit struct{}

func (NoOpRateLimit) AddTokens(uint) error { return nil }
func (NoOpRateLimit) GetToken(context.Context, uint) (func() error, error) {
	return noOpToken, nil
}
func noOpToken() error { return nil }

// ExponentialJitterBackoff provides backoff delays with jitter based on the
// number of attempts.
type ExponentialJitterBackoff struct {
	minDelay           time.Duration
	maxBackoffAttempts int
}

// NewExponentialJitterBackoff returns an ExponentialJitterBackoff configured
// for the max backoff.
func NewExponentialJitterBackoff(minDelay time.Duration, maxAttempts int) *ExponentialJitterBackoff {
	return &ExponentialJitterBackoff{minDelay, maxAttempts}
}

// BackoffDelay returns the duration to wait before the next attempt should be made
func (j *ExponentialJitterBackoff) BackoffDelay(attempt int, err error) (time.Duration, error) {
	// the calculated jitter will be between [0.8, 1.2)
	var jitter = float64(rand.Intn(120-80)+80) / 100

	retryTime := time.Duration(int(float64(int(j.minDelay.Nanoseconds())*int(math.Pow(3, float64(attempt)))) * jitter))

	// cap retry time at 5 minutes
	if retryTime > 5*time.Minute {
		retryTime = 5 * time.Minute
	}

	slog.Info("BackoffDelay:", "attempt", attempt, "retry_time", retryTime.String(), "error", err)

	return retryTime, nil
}
