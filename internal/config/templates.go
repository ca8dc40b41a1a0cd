package config

// DefaultConfigTemplate is the commented configuration written by
// "sysproxy config init".
const DefaultConfigTemplate = `# sysproxy configuration

# Logging
logging:
  level: info          # debug, info, warn, error
  format: text         # text or json
  output: stderr       # stdout, stderr or a file path

# Local REST API used by "sysproxy serve"
api:
  listen: "127.0.0.1:7390"
  # token: "${SYSPROXY_API_TOKEN}"   # Require "Authorization: Bearer <token>"

# Prometheus metrics, served on the API listener
metrics:
  enabled: true
  path: /metrics

# Named proxy settings for "sysproxy profile apply <name>"
profiles:
  - name: direct
    mode: direct

  - name: local
    mode: manual
    host: 127.0.0.1
    port: 7890
    bypass: "localhost;127.*;10.*;172.16.*;192.168.*;<local>"

  - name: pac
    mode: auto
    url: http://wpad/wpad.dat
`
