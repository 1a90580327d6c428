package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/ashcorp/wishlist-backend/pkg/config"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Loader fetches the JSON secret bundle once per process and serves lookups
// from memory. A failed fetch is cached as an empty bundle so the process
// keeps running on env fallbacks.
type Loader struct {
	api      secretsAPI
	secretID string
	logg     *logger.Logger

	once   sync.Once
	values map[string]string
	err    error
}

// New builds a loader backed by AWS Secrets Manager. When secrets are
// disabled the loader serves an empty bundle.
func New(ctx context.Context, cfg config.SecretsConfig, logg *logger.Logger) (*Loader, error) {
	if !cfg.Enabled {
		return NewWithAPI(nil, "", logg), nil
	}
	if strings.TrimSpace(cfg.SecretID) == "" {
		return nil, errors.New("secret id is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithAPI(secretsmanager.NewFromConfig(awsCfg), cfg.SecretID, logg), nil
}

// NewWithAPI wires an explicit client; a nil api yields an empty bundle.
func NewWithAPI(api secretsAPI, secretID string, logg *logger.Logger) *Loader {
	return &Loader{api: api, secretID: secretID, logg: logg}
}

// Load fetches the bundle on first use. Concurrent callers block on the
// same fetch.
func (l *Loader) Load(ctx context.Context) map[string]string {
	l.once.Do(func() {
		l.values, l.err = l.fetch(ctx)
		if l.err != nil {
			if l.logg != nil {
				l.logg.Error(l.logg.WithField(ctx, "secret_id", l.secretID), "secrets.load_failed", l.err)
			}
			l.values = map[string]string{}
			return
		}
		if l.logg != nil {
			l.logg.Info(l.logg.WithFields(ctx, map[string]any{
				"secret_id": l.secretID,
				"keys":      len(l.values),
			}), "secrets.loaded")
		}
	})
	return l.values
}

// Err returns the error from the initial fetch, if any.
func (l *Loader) Err() error {
	return l.err
}

// Get returns a single secret value, loading the bundle if needed.
func (l *Loader) Get(ctx context.Context, key string) string {
	return l.Load(ctx)[key]
}

func (l *Loader) fetch(ctx context.Context) (map[string]string, error) {
	if l.api == nil {
		return map[string]string{}, nil
	}

	out, err := l.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(l.secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret value: %w", err)
	}

	raw := aws.ToString(out.SecretString)
	if raw == "" && len(out.SecretBinary) > 0 {
		raw = string(out.SecretBinary)
	}
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}, nil
	}
	return parseBundle(raw)
}

func parseBundle(raw string) (map[string]string, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode secret json: %w", err)
	}
	values := make(map[string]string, len(decoded))
	for k, v := range decoded {
		switch typed := v.(type) {
		case nil:
			continue
		case string:
			values[k] = typed
		default:
			values[k] = fmt.Sprint(typed)
		}
	}
	return values, nil
}
