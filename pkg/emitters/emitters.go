package emitters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported emitter types.
	TypeCI        = "ci"
	TypeReport    = "report"
	TypeLog       = "log"
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcppubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile represents the structure of the emitters configuration file.
type configFile struct {
	Emitters []EmitterConfig `json:"emitters" yaml:"emitters"`
}

// EmitterConfig represents a single emitter entry declared in config files.
type EmitterConfig struct {
	ID      string               `json:"id" yaml:"id"`
	Type    string               `json:"type" yaml:"type"`
	Enabled *bool                `json:"enabled" yaml:"enabled"`
	CI      *CIEmitterConfig     `json:"ci" yaml:"ci"`
	Report  *ReportEmitterConfig `json:"report" yaml:"report"`
	HTTP    *HTTPEmitterConfig   `json:"http" yaml:"http"`
	SQS     *SQSEmitterConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSEmitterConfig    `json:"sns" yaml:"sns"`
	PubSub  *GCPPubSubConfig     `json:"gcppubsub" yaml:"gcppubsub"`
}

// CIEmitterConfig holds settings for the machine-readable CI output channel.
// An empty path writes the key/value lines to stdout.
type CIEmitterConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ReportEmitterConfig holds settings for the human-readable report document.
type ReportEmitterConfig struct {
	Path string `json:"path" yaml:"path"`
}

// HTTPEmitterConfig holds generic HTTP sink settings.
type HTTPEmitterConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSCredentials optionally pins static credentials for AWS sinks; when
// empty the default provider chain applies.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SQSEmitterConfig holds AWS SQS specific settings.
type SQSEmitterConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSEmitterConfig holds AWS SNS specific settings.
type SNSEmitterConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// GCPPubSubConfig holds GCP Pub/Sub specific settings.
type GCPPubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// ConfigRegistry materializes emitter definitions loaded from config files.
type ConfigRegistry struct {
	mu       sync.RWMutex
	emitters []EmitterConfig
	idx      map[string]EmitterConfig
}

// LoadRegistry loads the emitter registry from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("emitters file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open emitters file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read emitters file: %w", err)
	}

	fileReg, err := parseEmitterRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Emitters) == 0 {
		return nil, errors.New("emitters file contains no emitter entries")
	}

	reg := &ConfigRegistry{
		emitters: make([]EmitterConfig, len(fileReg.Emitters)),
		idx:      make(map[string]EmitterConfig, len(fileReg.Emitters)),
	}

	for i := range fileReg.Emitters {
		cfg := sanitizeEmitterConfig(fileReg.Emitters[i])
		if err := validateEmitterConfig(cfg); err != nil {
			return nil, fmt.Errorf("emitters[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate emitter id %q", cfg.ID)
		}
		reg.emitters[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseEmitterRegistry attempts to decode the emitters file content.
func parseEmitterRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("emitters file format not recognized (expected YAML or JSON)")
}

// sanitizeEmitterConfig trims and normalizes the emitter config fields.
func sanitizeEmitterConfig(cfg EmitterConfig) EmitterConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.CI != nil {
		c := *cfg.CI
		c.Path = strings.TrimSpace(c.Path)
		cfg.CI = &c
	}
	if cfg.Report != nil {
		c := *cfg.Report
		c.Path = strings.TrimSpace(c.Path)
		cfg.Report = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}

	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateEmitterConfig checks that required fields are present.
func validateEmitterConfig(cfg EmitterConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for emitter %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeReport:
		if cfg.Report == nil || cfg.Report.Path == "" {
			return fmt.Errorf("report.path is required for emitter %q", cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for emitter %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for emitter %q", cfg.ID)
		}
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for emitter %q", cfg.ID)
		}
		if cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for emitter %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for emitter %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for emitter %q", cfg.ID)
		}
		if cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for emitter %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for emitter %q", cfg.ID)
		}
	case TypeGCPPubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("gcppubsub config required for emitter %q", cfg.ID)
		}
		if cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("gcppubsub.project_id and gcppubsub.topic are required for emitter %q", cfg.ID)
		}
	}
	return nil
}

// ByID returns the emitter config by id.
func (r *ConfigRegistry) ByID(id string) (EmitterConfig, bool) {
	if r == nil {
		return EmitterConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return EmitterConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured emitters.
func (r *ConfigRegistry) All() []EmitterConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EmitterConfig, len(r.emitters))
	copy(out, r.emitters)
	return out
}

// Enabled returns emitters that are enabled.
func (r *ConfigRegistry) Enabled() []EmitterConfig {
	if r == nil {
		return nil
	}

	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]EmitterConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg EmitterConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
