package access

type AccessState string

const (
	AccessActive  AccessState = "active"
	AccessExpired AccessState = "expired"
	AccessNone    AccessState = "none"
)

const (
	CapPublishListing    = "publish_listing"
	CapFeaturedPlacement = "featured_placement"
	CapTopOfSearch       = "top_of_search"
	CapHighlightBadge    = "highlight_badge"
)
