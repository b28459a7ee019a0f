// Package config loads vbind settings from vbind.yaml and VBIND_*
// environment variables.
//
// # Configuration File Structure
//
//	app:
//	  manifest: app.yaml
//	  template: index.html
//	server:
//	  host: localhost
//	  port: 3000
//	  ws_path: /ws
//	render:
//	  interpolation: segments   # or whole-node
//	  hydration_ids: true
//	  omit_directives: false
//	  pretty: false
//	s3:
//	  region: us-east-1
//	  endpoint: http://localhost:9000
//	  path_style: true
//	metrics:
//	  enabled: true
//	  namespace: vbind
//	log:
//	  level: info
//	  format: text
//
// Every key can be overridden from the environment with dots replaced by
// underscores, e.g. VBIND_SERVER_PORT=8080.
//
// # Usage
//
//	cfg, warnings, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
