package constants

type CachePrefix string

const (
	CachePrefixAircraftAlias CachePrefix = "AIRCRAFT_ALIAS_"
)
