package combo

// Config holds the tuning knobs of the combination engine.
// It is loaded from environment variables or a config file.
type Config struct {
	// Candidate pools
	PriceCeilingRatio float64 `mapstructure:"price_ceiling_ratio" env:"PRICE_CEILING_RATIO" default:"0.6"`
	SupersetSize      int     `mapstructure:"superset_size" env:"SUPERSET_SIZE" default:"30"`
	SampleSize        int     `mapstructure:"sample_size" env:"SAMPLE_SIZE" default:"10"`

	// Repair sub-pools
	StarchPoolSize int `mapstructure:"starch_pool_size" env:"STARCH_POOL_SIZE" default:"15"`
	SidePoolSize   int `mapstructure:"side_pool_size" env:"SIDE_POOL_SIZE" default:"20"`

	// Enumeration ceilings
	MaxSeeds    int `mapstructure:"max_seeds" env:"MAX_SEEDS" default:"5000"`
	MaxAccepted int `mapstructure:"max_accepted" env:"MAX_ACCEPTED" default:"30"`
	ResultLimit int `mapstructure:"result_limit" env:"RESULT_LIMIT" default:"5"`

	// Combination shape
	MinMembers     int   `mapstructure:"min_members" env:"MIN_MEMBERS" default:"2"`
	MaxMembers     int   `mapstructure:"max_members" env:"MAX_MEMBERS" default:"5"`
	TopUpThreshold int64 `mapstructure:"top_up_threshold" env:"TOP_UP_THRESHOLD" default:"1000"`

	// Redundancy groups; empty means the defaults.
	RedundancyGroups []RedundancyGroup `mapstructure:"redundancy_groups"`
}

// maxSeedsLimit keeps rejection sampling in the generator cheap.
const maxSeedsLimit = 50000

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		PriceCeilingRatio: 0.6,
		SupersetSize:      30,
		SampleSize:        10,
		StarchPoolSize:    15,
		SidePoolSize:      20,
		MaxSeeds:          5000,
		MaxAccepted:       30,
		ResultLimit:       5,
		MinMembers:        2,
		MaxMembers:        5,
		TopUpThreshold:    1000,
	}
}

// Groups returns the configured redundancy groups or the defaults.
func (c *Config) Groups() []RedundancyGroup {
	if len(c.RedundancyGroups) == 0 {
		return DefaultRedundancyGroups()
	}
	return c.RedundancyGroups
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.PriceCeilingRatio < 0.6 || c.PriceCeilingRatio > 0.7 {
		return ErrInvalidConfig{Field: "price_ceiling_ratio", Reason: "must be between 0.6 and 0.7"}
	}
	if c.SampleSize < 1 {
		return ErrInvalidConfig{Field: "sample_size", Reason: "must be at least 1"}
	}
	if c.SupersetSize < c.SampleSize {
		return ErrInvalidConfig{Field: "superset_size", Reason: "must be >= sample_size"}
	}
	if c.StarchPoolSize < 1 {
		return ErrInvalidConfig{Field: "starch_pool_size", Reason: "must be at least 1"}
	}
	if c.SidePoolSize < 1 {
		return ErrInvalidConfig{Field: "side_pool_size", Reason: "must be at least 1"}
	}
	if c.MaxSeeds < 1 || c.MaxSeeds > maxSeedsLimit {
		return ErrInvalidConfig{Field: "max_seeds", Reason: "must be between 1 and 50000"}
	}
	if c.MaxAccepted < 1 {
		return ErrInvalidConfig{Field: "max_accepted", Reason: "must be at least 1"}
	}
	if c.ResultLimit < 1 || c.ResultLimit > c.MaxAccepted {
		return ErrInvalidConfig{Field: "result_limit", Reason: "must be between 1 and max_accepted"}
	}
	if c.MinMembers < 2 {
		return ErrInvalidConfig{Field: "min_members", Reason: "must be at least 2"}
	}
	if c.MaxMembers < c.MinMembers {
		return ErrInvalidConfig{Field: "max_members", Reason: "must be >= min_members"}
	}
	if c.TopUpThreshold < 0 {
		return ErrInvalidConfig{Field: "top_up_threshold", Reason: "must be non-negative"}
	}
	if len(c.RedundancyGroups) > maxRedundancyGroups {
		return ErrInvalidConfig{Field: "redundancy_groups", Reason: "at most 32 groups are supported"}
	}
	for _, g := range c.RedundancyGroups {
		if g.Name == "" || len(g.Tags) == 0 {
			return ErrInvalidConfig{Field: "redundancy_groups", Reason: "each group needs a name and at least one tag"}
		}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
