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
		cfg.Storage.DatabasePath = "/usr/local/var/atsume/data/db/documents.db"
	}
	if cfg.Storage.VectorStorePath == "" {
		cfg.Storage.VectorStorePath = "/usr/local/var/atsume/data/indices/vectors.json"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.CandidatePoolSize == 0 {
		cfg.Search.CandidatePoolSize = 1000
	}
	if cfg.Search.SemanticRankWeight == 0 {
		cfg.Search.SemanticRankWeight = 0.6
	}
	if cfg.Search.LexicalRankWeight == 0 {
		cfg.Search.LexicalRankWeight = 0.4
	}
	if cfg.Search.SemanticScoreWeight == 0 {
		cfg.Search.SemanticScoreWeight = 0.2
	}
	if cfg.Search.LexicalScoreWeight == 0 {
		cfg.Search.LexicalScoreWeight = 0.1
	}
	if cfg.Search.SuggestionLimit == 0 {
		cfg.Search.SuggestionLimit = 5
	}
	if cfg.Search.ChunkSize == 0 {
		cfg.Search.ChunkSize = 800
	}
	if cfg.Search.ChunkOverlap == 0 {
		cfg.Search.ChunkOverlap = 100
	}
	if cfg.Context.DefaultMaxTokens == 0 {
		cfg.Context.DefaultMaxTokens = 2000
	}
	if cfg.Context.DefaultMaxChunks == 0 {
		cfg.Context.DefaultMaxChunks = 5
	}
	if cfg.Context.TokenEstimator == "" {
		cfg.Context.TokenEstimator = "heuristic"
	}
	if cfg.Context.TiktokenEncoding == "" {
		cfg.Context.TiktokenEncoding = "cl100k_base"
	}
}
