package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cuemby/sfs/pkg/metastore"
)

// Discovery mirrors spec.md §6's elasticsearch.discovery.zen.ping.unicast
// settings: how this node finds the rest of the document-store cluster.
type Discovery struct {
	UnicastHosts    []string
	MulticastEnable bool
	UnicastEnable   bool
}

// Metastore holds every elasticsearch.* key from spec.md §6, bound through
// viper so each is overridable by an environment variable of the matching
// name (elasticsearch.cluster.name -> ELASTICSEARCH_CLUSTER_NAME).
type Metastore struct {
	ClusterName string
	NodeName    string
	Discovery   Discovery

	Shards   int
	Replicas int

	IndexTimeout  time.Duration
	GetTimeout    time.Duration
	SearchTimeout time.Duration
	DeleteTimeout time.Duration
	AdminTimeout  time.Duration
	ScrollTimeout time.Duration
}

// Load binds every configuration key through viper's AutomaticEnv with a
// dot-to-underscore replacer, then reads them into a Metastore. Defaults
// mirror metastore.DefaultConfig so an unconfigured node still starts.
func Load() Metastore {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("elasticsearch.cluster.name", "sfs")
	v.SetDefault("elasticsearch.node.name", "")
	v.SetDefault("elasticsearch.discovery.zen.ping.unicast.hosts", []string{"127.0.0.1:9200"})
	v.SetDefault("elasticsearch.discovery.zen.ping.multicast.enabled", true)
	v.SetDefault("elasticsearch.discovery.zen.ping.unicast.enabled", false)
	v.SetDefault("elasticsearch.shards", 1)
	v.SetDefault("elasticsearch.replicas", 0)
	v.SetDefault("elasticsearch.defaultindextimeout", 500*time.Millisecond)
	v.SetDefault("elasticsearch.defaultgettimeout", 500*time.Millisecond)
	v.SetDefault("elasticsearch.defaultsearchtimeout", 5*time.Second)
	v.SetDefault("elasticsearch.defaultdeletetimeout", 500*time.Millisecond)
	v.SetDefault("elasticsearch.defaultadmintimeout", 30*time.Second)
	v.SetDefault("elasticsearch.defaultscrolltimeout", 120*time.Second)

	return Metastore{
		ClusterName: v.GetString("elasticsearch.cluster.name"),
		NodeName:    v.GetString("elasticsearch.node.name"),
		Discovery: Discovery{
			UnicastHosts:    v.GetStringSlice("elasticsearch.discovery.zen.ping.unicast.hosts"),
			MulticastEnable: v.GetBool("elasticsearch.discovery.zen.ping.multicast.enabled"),
			UnicastEnable:   v.GetBool("elasticsearch.discovery.zen.ping.unicast.enabled"),
		},
		Shards:        v.GetInt("elasticsearch.shards"),
		Replicas:      v.GetInt("elasticsearch.replicas"),
		IndexTimeout:  v.GetDuration("elasticsearch.defaultindextimeout"),
		GetTimeout:    v.GetDuration("elasticsearch.defaultgettimeout"),
		SearchTimeout: v.GetDuration("elasticsearch.defaultsearchtimeout"),
		DeleteTimeout: v.GetDuration("elasticsearch.defaultdeletetimeout"),
		AdminTimeout:  v.GetDuration("elasticsearch.defaultadmintimeout"),
		ScrollTimeout: v.GetDuration("elasticsearch.defaultscrolltimeout"),
	}
}

// MetastoreConfig adapts Metastore into the metastore.Config shape
// pkg/metastore.Store.Start expects.
func (m Metastore) MetastoreConfig() metastore.Config {
	hosts := m.Discovery.UnicastHosts
	if len(hosts) == 0 {
		hosts = []string{"127.0.0.1:9200"}
	}
	return metastore.Config{
		DiscoveryHosts:  hosts,
		ClusterName:     m.ClusterName,
		NodeName:        m.NodeName,
		DefaultShards:   m.Shards,
		DefaultReplicas: m.Replicas,
		IndexTimeout:    m.IndexTimeout,
		GetTimeout:      m.GetTimeout,
		DeleteTimeout:   m.DeleteTimeout,
		SearchTimeout:   m.SearchTimeout,
		ScrollTimeout:   m.ScrollTimeout,
		AdminTimeout:    m.AdminTimeout,
	}
}
