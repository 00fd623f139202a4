package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "basic valid config",
			yaml: `
schema:
  - path: schema.graphql
documents:
  include:
    - "**/*.graphql"
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Len(t, cfg.Schema, 1)
				assert.True(t, filepath.IsAbs(cfg.Schema[0].Path), "LoadFile resolves schema paths against the config file's directory")
				assert.Equal(t, "schema.graphql", filepath.Base(cfg.Schema[0].Path))
				assert.Equal(t, "file", cfg.Schema[0].Type)
				assert.Len(t, cfg.Documents.Include, 1)
			},
		},
		{
			name: "environment variable expansion",
			yaml: `
schema:
  - url: ${GRAPHQL_ENDPOINT}
    headers:
      Authorization: "Bearer ${API_TOKEN}"
documents:
  include:
    - "**/*.graphql"
`,
			envVars: map[string]string{
				"GRAPHQL_ENDPOINT": "https://api.example.com/graphql",
				"API_TOKEN":        "secret-token",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.example.com/graphql", cfg.Schema[0].URL)
				assert.Equal(t, "Bearer secret-token", cfg.Schema[0].Headers["Authorization"])
			},
		},
		{
			name: "multiple schema sources",
			yaml: `
schema:
  - path: base.graphql
  - path: extensions.graphql
  - url: https://api.example.com/graphql
documents:
  include:
    - "src/**/*.ts"
    - "src/**/*.graphql"
  exclude:
    - "node_modules/**"
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Len(t, cfg.Schema, 3)
				assert.Equal(t, "file", cfg.Schema[0].Type)
				assert.Equal(t, "file", cfg.Schema[1].Type)
				assert.Equal(t, "url", cfg.Schema[2].Type)
				assert.Len(t, cfg.Documents.Include, 2)
				assert.Len(t, cfg.Documents.Exclude, 1)
			},
		},
		{
			name: "lint and client extensions",
			yaml: `
schema:
  - path: schema.graphql
documents:
  include:
    - "**/*.graphql"
extensions:
  client: relay
  lint:
    no-unused-fragments: error
    no-deprecated-fields: warn
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "relay", cfg.Extensions.Client)
				assert.Equal(t, "error", cfg.Extensions.Lint["no-unused-fragments"])
				assert.Equal(t, "warn", cfg.Extensions.Lint["no-deprecated-fields"])
			},
		},
		{
			name: "extract config",
			yaml: `
schema:
  - path: schema.graphql
documents:
  include:
    - "**/*.ts"
extensions:
  extractConfig:
    tagIdentifiers:
      - gql
      - graphql
    magicComment: GraphQL
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"gql", "graphql"}, cfg.Extensions.ExtractConfig.TagIdentifiers)
				assert.Equal(t, "GraphQL", cfg.Extensions.ExtractConfig.MagicComment)
			},
		},
		{
			name: "missing schema",
			yaml: `
documents:
  include:
    - "**/*.graphql"
`,
			wantErr: true,
		},
		{
			name: "invalid schema type",
			yaml: `
schema:
  - type: invalid
    path: schema.graphql
documents:
  include:
    - "**/*.graphql"
`,
			wantErr: true,
		},
		{
			name: "invalid client extension",
			yaml: `
schema:
  - path: schema.graphql
documents:
  include:
    - "**/*.graphql"
extensions:
  client: urql
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "config.yaml")
			err := os.WriteFile(tmpFile, []byte(tt.yaml), 0644)
			require.NoError(t, err)

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadFile(tmpFile)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{
		Schema: []SchemaSource{
			{Path: "schema.graphql"},
			{URL: "https://api.example.com/graphql"},
		},
	}

	err := cfg.setDefaults()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Schema[0].Type)
	assert.Equal(t, "url", cfg.Schema[1].Type)

	assert.Contains(t, cfg.Documents.Include, "**/*.graphql")
	assert.Contains(t, cfg.Documents.Include, "**/*.ts")
	assert.Contains(t, cfg.Documents.Include, "**/*.tsx")

	assert.Equal(t, "none", cfg.Extensions.Client)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "empty schema",
			config:  Config{},
			wantErr: "at least one schema source is required",
		},
		{
			name: "schema without type",
			config: Config{
				Schema: []SchemaSource{
					{},
				},
			},
			wantErr: "type is required",
		},
		{
			name: "file schema without path",
			config: Config{
				Schema: []SchemaSource{
					{Type: "file"},
				},
			},
			wantErr: "path is required for file type",
		},
		{
			name: "url schema without url",
			config: Config{
				Schema: []SchemaSource{
					{Type: "url"},
				},
			},
			wantErr: "url is required for url type",
		},
		{
			name: "empty documents",
			config: Config{
				Schema: []SchemaSource{
					{Type: "file", Path: "schema.graphql"},
				},
				Documents: Documents{
					Include: []string{},
				},
			},
			wantErr: "documents.include cannot be empty",
		},
		{
			name: "invalid onTypeConflict",
			config: Config{
				Schema: []SchemaSource{
					{Type: "file", Path: "schema.graphql"},
				},
				Documents: Documents{
					Include: []string{"**/*.graphql"},
				},
				OnTypeConflict: "merge",
			},
			wantErr: "invalid onTypeConflict strategy",
		},
		{
			name: "invalid lint severity",
			config: Config{
				Schema: []SchemaSource{
					{Type: "file", Path: "schema.graphql"},
				},
				Documents: Documents{
					Include: []string{"**/*.graphql"},
				},
				Extensions: Extensions{
					Lint: map[string]string{"no-unused-fragments": "fatal"},
				},
			},
			wantErr: "invalid severity",
		},
		{
			name: "valid config",
			config: Config{
				Schema: []SchemaSource{
					{Type: "file", Path: "schema.graphql"},
				},
				Documents: Documents{
					Include: []string{"**/*.graphql"},
				},
				Extensions: Extensions{
					Client: "apollo",
					Lint:   map[string]string{"no-unused-fragments": "error"},
				},
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ResolveRelativePaths(t *testing.T) {
	cfg := &Config{
		Schema: []SchemaSource{
			{Path: "schema.graphql"},
			{Path: "/absolute/path.graphql"},
		},
		Documents: Documents{
			Include: []string{
				"src/**/*.graphql",
				"/absolute/include/*.ts",
			},
			Exclude: []string{
				"node_modules/**",
				"/absolute/exclude/**",
			},
		},
	}

	configPath := "/project/config.yaml"
	cfg.ResolveRelativePaths(configPath)

	assert.Equal(t, "/project/schema.graphql", cfg.Schema[0].Path)
	assert.Equal(t, "/absolute/path.graphql", cfg.Schema[1].Path)

	assert.Equal(t, "/project/src/**/*.graphql", cfg.Documents.Include[0])
	assert.Equal(t, "/absolute/include/*.ts", cfg.Documents.Include[1])

	assert.Equal(t, "/project/node_modules/**", cfg.Documents.Exclude[0])
	assert.Equal(t, "/absolute/exclude/**", cfg.Documents.Exclude[1])
}

func TestExpandEnvVars(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		envVars map[string]string
		want    string
	}{
		{
			name:  "no env vars",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "single env var with braces",
			input: "url: ${API_URL}",
			envVars: map[string]string{
				"API_URL": "https://api.example.com",
			},
			want: "url: https://api.example.com",
		},
		{
			name:  "single env var without braces",
			input: "token: $TOKEN",
			envVars: map[string]string{
				"TOKEN": "secret",
			},
			want: "token: secret",
		},
		{
			name:  "multiple env vars",
			input: "Bearer ${TOKEN} for ${USER}",
			envVars: map[string]string{
				"TOKEN": "abc123",
				"USER":  "john",
			},
			want: "Bearer abc123 for john",
		},
		{
			name:  "undefined env var",
			input: "value: ${UNDEFINED_VAR}",
			want:  "value: ${UNDEFINED_VAR}",
		},
		{
			name:  "mixed defined and undefined",
			input: "${DEFINED} and ${UNDEFINED}",
			envVars: map[string]string{
				"DEFINED": "value",
			},
			want: "value and ${UNDEFINED}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			got := expandEnvVars(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetConflictResolver(t *testing.T) {
	assert.Nil(t, GetConflictResolver(""))
	assert.Nil(t, GetConflictResolver("error"))
	assert.NotNil(t, GetConflictResolver("useFirst"))
	assert.NotNil(t, GetConflictResolver("useLast"))
}
