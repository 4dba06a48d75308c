package address

import (
	"strings"
	"unicode"
)

// LinkKind classifies a link target found in page content.
type LinkKind int

const (
	// LocalRelativePath is a page on the current server, either a bare
	// relative path or a nym:// link without a full peer address.
	LocalRelativePath LinkKind = iota
	// AbsolutePath starts with "/" and is resolved against the current server.
	AbsolutePath
	// ExternalMixAddress names another peer by its full mixnet address.
	ExternalMixAddress
	// UnsupportedScheme is any other scheme (http, https, mailto...).
	UnsupportedScheme
)

func (k LinkKind) String() string {
	switch k {
	case LocalRelativePath:
		return "relative"
	case AbsolutePath:
		return "absolute"
	case ExternalMixAddress:
		return "peer"
	case UnsupportedScheme:
		return "unsupported"
	}
	return "unknown"
}

// Link is a classified link target.
type Link struct {
	Kind LinkKind
	// Server is set only for ExternalMixAddress.
	Server string
	// Path is the page to request, in the form the user or page wrote it.
	Path string
	Href string
}

// opaqueSchemes are schemes written without "//".
var opaqueSchemes = []string{"mailto:", "javascript:", "data:", "tel:"}

// linkTerminators end a nym:// link inside running text.
const linkTerminators = ")]>\"'"

// ClassifyLink decides how a link target should be followed.
func ClassifyLink(href string) Link {
	href = strings.TrimSpace(href)

	if server, path, ok := ParseNymURL(href); ok {
		if IsPeerAddress(server) {
			return Link{Kind: ExternalMixAddress, Server: server, Path: path, Href: href}
		}
		return Link{Kind: LocalRelativePath, Path: strings.TrimPrefix(href, Scheme), Href: href}
	}

	if strings.Contains(href, "://") {
		return Link{Kind: UnsupportedScheme, Href: href}
	}
	lower := strings.ToLower(href)
	for _, s := range opaqueSchemes {
		if strings.HasPrefix(lower, s) {
			return Link{Kind: UnsupportedScheme, Href: href}
		}
	}

	if strings.HasPrefix(href, "/") {
		return Link{Kind: AbsolutePath, Path: href, Href: href}
	}
	return Link{Kind: LocalRelativePath, Path: href, Href: href}
}

// IsPeerAddress reports whether server looks like a full mixnet address
// (identity.encryption@gateway) rather than a path segment.
func IsPeerAddress(server string) bool {
	return strings.Contains(server, ".") && strings.Contains(server, "@")
}

// ExtractLinks returns every nym:// link in text, de-duplicated, in the order
// first seen. A link ends at whitespace or at a closing bracket or quote.
func ExtractLinks(text string) []string {
	var links []string
	seen := make(map[string]bool)

	rest := text
	for {
		start := strings.Index(rest, Scheme)
		if start < 0 {
			break
		}
		rest = rest[start:]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return unicode.IsSpace(r) || strings.ContainsRune(linkTerminators, r)
		})
		if end < 0 {
			end = len(rest)
		}
		link := rest[:end]
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
		rest = rest[end:]
	}
	return links
}

// NeutralizeLinks strips the scheme from every nym:// link so a markup
// renderer shows them as plain text. Links are followed through the link
// panel or the page click fallback instead.
func NeutralizeLinks(text string) string {
	// Every occurrence of the scheme starts an extracted link, so stripping
	// the scheme everywhere strips it from every link.
	return strings.ReplaceAll(text, Scheme, "")
}
