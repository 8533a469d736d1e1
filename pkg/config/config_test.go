package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	m := Load()
	if m.ClusterName != "sfs" {
		t.Errorf("ClusterName = %v, want sfs", m.ClusterName)
	}
	if m.Shards != 1 || m.Replicas != 0 {
		t.Errorf("Shards/Replicas = %d/%d, want 1/0", m.Shards, m.Replicas)
	}
	if !m.Discovery.MulticastEnable || m.Discovery.UnicastEnable {
		t.Errorf("Discovery = %+v, want multicast=true unicast=false", m.Discovery)
	}
	if m.SearchTimeout != 5*time.Second {
		t.Errorf("SearchTimeout = %v, want 5s", m.SearchTimeout)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ELASTICSEARCH_CLUSTER_NAME", "sfs-test")
	t.Setenv("ELASTICSEARCH_SHARDS", "3")

	m := Load()
	if m.ClusterName != "sfs-test" {
		t.Errorf("ClusterName = %v, want sfs-test", m.ClusterName)
	}
	if m.Shards != 3 {
		t.Errorf("Shards = %d, want 3", m.Shards)
	}
}

func TestMetastoreConfig_FallsBackToLocalhostWhenNoHosts(t *testing.T) {
	m := Metastore{ClusterName: "sfs"}
	cfg := m.MetastoreConfig()
	if len(cfg.DiscoveryHosts) != 1 || cfg.DiscoveryHosts[0] != "127.0.0.1:9200" {
		t.Errorf("DiscoveryHosts = %v, want fallback localhost", cfg.DiscoveryHosts)
	}
}
