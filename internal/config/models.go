package config

// ServerConfig represents the configuration for the serving frontend
type ServerConfig struct {
	FrontendType     string
	ListenAddress    string
	BlockSpam        bool
	StatusHeader     string
	ConfidenceHeader string
	ModelHeader      string
	SubjectPrefix    string
	ModifySubject    bool
	PostfixAddress   string
	PostfixPort      int
	PostfixEnabled   bool
}

// ModelConfig represents the configuration for the artifact store
type ModelConfig struct {
	Store      string
	Path       string
	SQLitePath string
	MySQLDSN   string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FrontendType:     c.GetString("server.frontend_type"),
		ListenAddress:    c.GetString("server.listen_address"),
		BlockSpam:        c.GetBool("server.block_spam"),
		StatusHeader:     c.GetString("server.headers.status"),
		ConfidenceHeader: c.GetString("server.headers.confidence"),
		ModelHeader:      c.GetString("server.headers.model"),
		SubjectPrefix:    c.GetString("server.subject_prefix"),
		ModifySubject:    c.GetBool("server.modify_subject"),
		PostfixAddress:   c.GetString("server.postfix.address"),
		PostfixPort:      c.GetInt("server.postfix.port"),
		PostfixEnabled:   c.GetBool("server.postfix.enabled"),
	}
}

// GetModel returns the artifact store configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Store:      c.GetString("model.store"),
		Path:       c.GetString("model.path"),
		SQLitePath: c.GetString("model.sqlite_path"),
		MySQLDSN:   c.GetString("model.mysql_dsn"),
	}
}
