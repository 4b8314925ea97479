package config

// Plan sources
const (
	SourceCLI = "cli"
	SourceTFE = "tfe"
)

// Alert channels
const (
	ChannelEmail = "email"
	ChannelSlack = "slack"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverDynamoDB = "dynamodb"
)

// DefaultMaxPlanBytes is the ingestion size limit for plan text.
const DefaultMaxPlanBytes = 1_000_000

// Config is the top-level scan configuration, decoded from HCL or YAML.
type Config struct {
	Concurrency  int          `hcl:"concurrency,optional" yaml:"concurrency"`
	MaxPlanBytes int          `hcl:"max_plan_bytes,optional" yaml:"max_plan_bytes"`
	LogLevel     string       `hcl:"log_level,optional" yaml:"log_level"`
	Store        *StoreConfig `hcl:"store,block" yaml:"store"`
	TFE          *TFEConfig   `hcl:"tfe,block" yaml:"tfe"`
	Email        *EmailConfig `hcl:"email,block" yaml:"email"`
	Slack        *SlackConfig `hcl:"slack,block" yaml:"slack"`
	Targets      []*Target    `hcl:"target,block" yaml:"targets"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver   string `hcl:"driver" yaml:"driver"`
	DSN      string `hcl:"dsn,optional" yaml:"dsn"`           // sqlite path or redis address
	Password string `hcl:"password,optional" yaml:"password"` // redis
	Table    string `hcl:"table,optional" yaml:"table"`       // dynamodb
	Region   string `hcl:"region,optional" yaml:"region"`     // dynamodb
	Prefix   string `hcl:"prefix,optional" yaml:"prefix"`     // redis key prefix
}

// TFEConfig points at a Terraform Cloud / Enterprise installation.
type TFEConfig struct {
	Address      string `hcl:"address,optional" yaml:"address"`
	Token        string `hcl:"token,optional" yaml:"token"`
	Organization string `hcl:"organization" yaml:"organization"`
}

// EmailConfig configures SMTP delivery of drift alerts.
type EmailConfig struct {
	SMTPHost string `hcl:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `hcl:"smtp_port,optional" yaml:"smtp_port"`
	Username string `hcl:"username,optional" yaml:"username"`
	Password string `hcl:"password,optional" yaml:"password"`
	From     string `hcl:"from" yaml:"from"`
}

// SlackConfig configures an incoming-webhook alert channel.
type SlackConfig struct {
	WebhookURL string `hcl:"webhook_url" yaml:"webhook_url"`
	Channel    string `hcl:"channel,optional" yaml:"channel"`
	Username   string `hcl:"username,optional" yaml:"username"`
}

// Target is one repository or workspace whose plan is scanned.
type Target struct {
	Name         string   `hcl:"name,label" yaml:"name"`
	Source       string   `hcl:"source,optional" yaml:"source"`
	Dir          string   `hcl:"dir,optional" yaml:"dir"`
	Args         []string `hcl:"args,optional" yaml:"args"`
	Workspace    string   `hcl:"workspace,optional" yaml:"workspace"`
	AlertChannel string   `hcl:"alert_channel,optional" yaml:"alert_channel"`
	AlertTo      []string `hcl:"alert_to,optional" yaml:"alert_to"`
}
