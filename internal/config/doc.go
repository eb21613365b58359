// Package config provides configuration loading for the vstore CLI.
//
// The configuration is stored in vstore.json or vstore.yaml in the working
// directory or any parent. Missing fields take their defaults.
//
// # Configuration File Structure
//
//	{
//	  "name": "cart",
//	  "strict": true,
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "cart"
//	  },
//	  "trace": {
//	    "enabled": false
//	  }
//	}
//
// or, equivalently:
//
//	name: cart
//	strict: true
//	log:
//	  level: debug
//	  format: json
//	metrics:
//	  enabled: true
//	  namespace: cart
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if config.IsNotFound(err) {
//	    cfg = config.New()
//	} else if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Logger(os.Stderr)
package config
