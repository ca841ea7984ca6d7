package domain

// LinkIconKeys is the fixed set of icon identifiers a link may carry.
// The dashboard renders these client-side; the server only validates
// membership.
var LinkIconKeys = []string{
	"globe", "link-2", "house", "mail", "phone", "message-circle",
	"calendar", "shopping-bag", "badge-dollar-sign", "ticket",
	"podcast", "music", "video", "camera", "newspaper", "file-text",
	"map-pin", "gamepad-2", "book-open", "rss",
	"instagram", "youtube", "x", "facebook", "linkedin", "github",
	"twitch", "slack", "figma", "dribbble",
}

var linkIconKeySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(LinkIconKeys))
	for _, key := range LinkIconKeys {
		set[key] = struct{}{}
	}
	return set
}()

// IsLinkIconKey reports whether value is a known icon key.
func IsLinkIconKey(value string) bool {
	_, ok := linkIconKeySet[value]
	return ok
}
