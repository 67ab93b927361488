// Package config provides configuration management for the jarvis
// command interpreter.
//
// # Configuration File
//
// The configuration is stored at ~/.jarvis/config.yaml and is created
// with defaults on first use. The file mirrors the structs in this
// package:
//
//	nlp:
//	    fuzzy_threshold: 0.8
//	    confidence_threshold: 0.7
//	    max_patterns: 100
//	insight:
//	    enabled: false
//	    mode: off
//	    provider: ollama
//	history:
//	    enabled: true
//	    db_path: ~/.jarvis/history.db
//	    retention: 1000
//	batch:
//	    concurrency: 4
//	logging:
//	    level: info
//
// # Environment Variables
//
// Every value can be overridden with the JARVIS_ prefix. Nested fields are
// separated by underscores.
//
// Examples:
//   - JARVIS_NLP_FUZZY_THRESHOLD=0.75
//   - JARVIS_INSIGHT_MODE=low_confidence
//   - JARVIS_INSIGHT_API_KEY=sk-...
//   - JARVIS_LOGGING_LEVEL=debug
//
// The pipeline tables themselves (lexicon, intent patterns, action
// templates) are compiled in and are not configurable.
package config
