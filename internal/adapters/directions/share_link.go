package directions

import (
	"net/url"
	"sort"
	"strings"
)

const shareBaseURL = "https://www.google.com/maps/dir/?"

// BuildShareableLink returns a Google Maps URL that opens the trip, with
// waypoints, in a browser or the Maps app.
func BuildShareableLink(origin, destination string, waypoints []string, travelMode string) string {
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("travelmode", travelMode)

	if w := serializeWaypoints(waypoints, false); w != "" {
		params.Set("waypoints", w)
	}

	return shareBaseURL + encodeKeepingSeparators(params)
}

// encodeKeepingSeparators works like url.Values.Encode but leaves '|' and
// ',' unescaped, as Maps expects them literally in waypoint lists.
func encodeKeepingSeparators(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	unescape := strings.NewReplacer("%7C", "|", "%2C", ",")

	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(unescape.Replace(url.QueryEscape(val)))
		}
	}
	return b.String()
}
