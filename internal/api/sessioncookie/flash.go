package sessioncookie

import "net/url"

// Cookie values may not contain spaces or semicolons.
func encodeFlash(msg string) string { return url.QueryEscape(msg) }

func decodeFlash(v string) string {
	msg, err := url.QueryUnescape(v)
	if err != nil {
		return ""
	}
	return msg
}
