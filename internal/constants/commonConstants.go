package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "success"
	APIStatusError APIStatus = "error"

	CachePrefixAirlines CachePrefix = "AIRLINES_"
	CachePrefixCluster  CachePrefix = "CLUSTER_"
	CachePrefixRegions  CachePrefix = "REGIONS"
)

const (
	DefaultAirlinesLimit = 50
	MaxAirlinesLimit     = 1000
)
