package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

const DefaultGatewayPrefix = "https://ipfs.io/ipfs/"

var (
	gatewayPrefixes = []string{
		DefaultGatewayPrefix,
		"https://gateway.pinata.cloud/ipfs/",
		"https://cloudflare-ipfs.com/ipfs/",
		"https://ipfs.foundation.app/ipfs/",
		"ipfs://ipfs/",
		"ipfs://",
	}
	dedicatedPinataRegex = regexp.MustCompile(`^https://[^/]+\.mypinata\.cloud/ipfs/`)
)

// ContentHash extracts the content-addressed part of a metadata pointer,
// e.g. https://ipfs.io/ipfs/QmAbc/1.json -> QmAbc/1.json
func ContentHash(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	hash := ""
	matched := false
	for _, p := range gatewayPrefixes {
		if strings.HasPrefix(uri, p) {
			hash = strings.TrimPrefix(uri, p)
			matched = true
			break
		}
	}
	if !matched {
		if loc := dedicatedPinataRegex.FindStringIndex(uri); loc != nil {
			hash = uri[loc[1]:]
			matched = true
		}
	}
	if !matched {
		u, err := url.Parse(uri)
		if err != nil || u.Scheme != "" {
			return "", ErrMalformedPointer
		}
		hash = uri
	}
	hash = strings.Trim(hash, "/")
	if hash == "" {
		return "", ErrMalformedPointer
	}
	return hash, nil
}
