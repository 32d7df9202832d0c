package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/docsearch/data/db/documents.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/docsearch/data/indices/vectors.idx"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.HybridBonus == 0 {
		cfg.Search.HybridBonus = 0.2
	}
	if cfg.Search.LexicalDiscount == 0 {
		cfg.Search.LexicalDiscount = 0.8
	}
	if cfg.Search.LexicalSaturation == 0 {
		cfg.Search.LexicalSaturation = 3.0
	}
	if cfg.Search.ScanPageSize == 0 {
		cfg.Search.ScanPageSize = 200
	}
	if cfg.Search.QueryTimeoutSeconds == 0 {
		cfg.Search.QueryTimeoutSeconds = 10
	}
	if cfg.Search.PreviewLength == 0 {
		cfg.Search.PreviewLength = 200
	}
	if cfg.Index.PersistEvery == 0 {
		cfg.Index.PersistEvery = 50
	}
	if cfg.Index.Workers == 0 {
		cfg.Index.Workers = 4
	}
}
