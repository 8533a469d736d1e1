// Package config binds every externally configurable key this module
// defines (elasticsearch.* discovery, shard/replica, and per-operation
// timeout settings) through viper, so each key is overridable by an
// environment variable of the matching name — ELASTICSEARCH_CLUSTER_NAME
// for elasticsearch.cluster.name, and so on.
package config
