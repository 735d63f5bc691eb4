package config

// DefaultConfigYAML contains the default configuration YAML content.
// This is what `companion config init` writes for a fresh setup.
const DefaultConfigYAML = `# LedgerBird Companion Configuration
#
# Values not specified here use sensible defaults. Every key can also be
# set through the environment with the COMPANION_ prefix, for example
# COMPANION_API_TOKEN or COMPANION_WORKSPACE.

# Backend connection
api:
  base_url: https://app.ledgerbird.com
  # Personal access token. Prefer COMPANION_API_TOKEN over writing it here.
  token: ""
  timeout: 30s

# Workspace the CLI operates on by default. Override per invocation
# with --workspace.
workspace: ""

proposals:
  # Maximum proposals fetched per refresh. The server applies its own cap.
  limit: 200

permissions:
  # Whether this reviewer may change AI settings (mode upgrade, kill
  # switch). The backend enforces permissions regardless; this only
  # controls which actions the CLI offers.
  manage_ai_settings: false

# Local decision journal. Records what was approved or rejected and when.
# Pending proposals are never stored locally.
journal:
  enabled: true
  path: ~/.local/share/companion/journal.db

# Built-in sandbox server for trying the review flow without a backend.
# Start it with: companion sandbox serve
sandbox:
  addr: 127.0.0.1:8087
  # Optional fixtures file. Empty means the bundled demo dataset.
  fixtures: ""

log:
  level: info
  format: auto
  # Optional log file. Empty logs to stderr.
  file: ""
`
