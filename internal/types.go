package internal

import (
	"sjsage522/vesselschedule/services/cache"
	"sjsage522/vesselschedule/services/publisher"
)

// Dependencies holds the optional backing services. Either may be nil.
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}
