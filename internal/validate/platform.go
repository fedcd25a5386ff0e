package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/pap/internal/model"
)

// platformDomains maps registrable domains to the platform that hosts them
var platformDomains = map[string]model.SourceType{
	"tiktok.com":    model.SourceTikTok,
	"vm.tiktok.com": model.SourceTikTok,
	"facebook.com":  model.SourceFacebook,
	"fb.com":        model.SourceFacebook,
	"fb.watch":      model.SourceFacebook,
	"x.com":         model.SourceX,
	"twitter.com":   model.SourceX,
	"t.co":          model.SourceX,
	"reddit.com":    model.SourceReddit,
	"redd.it":       model.SourceReddit,
	"youtube.com":   model.SourceYouTube,
	"youtu.be":      model.SourceYouTube,
}

// ClassifySource names the platform a URL belongs to. Hosts that are not a
// known social platform count as news sites, as do unparseable URLs.
func ClassifySource(rawURL string) model.SourceType {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return model.SourceNews
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	if t, ok := platformDomains[host]; ok {
		return t
	}
	// subdomains such as old.reddit.com or mobile.twitter.com
	for domain, t := range platformDomains {
		if strings.HasSuffix(host, "."+domain) {
			return t
		}
	}
	return model.SourceNews
}
