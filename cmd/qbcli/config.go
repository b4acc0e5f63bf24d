package main

import (
	"fmt"
	"os"
)

const sampleConfig = `# QuickBase connection
token: "b12345_abcde_0_xxxxxxxxxxxxxxxxxxxxxxxxx"
realm: "yourrealm.quickbase.com"
app_id: "bqxxxxxxx"

# HTTP options
timeout: 30

retry:
  max_attempts: 3
  initial_delay: 1.0

rate_limit:
  enabled: true
  requests_per_second: 10
  requests_per_minute: 100

# GET response cache; uncomment redis for a shared cache
cache:
  enabled: true
  ttl: 300
  # redis:
  #   address: "127.0.0.1:6379"
  #   password: ""
  #   db: 0
  #   prefix: "qb:cache"
`

// SaveSampleConfig writes the sample configuration template to a file.
// Refuses to overwrite an existing file.
func SaveSampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, remove it first", path)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
