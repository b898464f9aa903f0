package connection

import "strings"

func hasAttribute(connStr, key string) bool {
	for _, part := range strings.Split(connStr, ";") {
		k, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return true
		}
	}
	return false
}

func appendAttribute(connStr, key, value string) string {
	if connStr != "" && !strings.HasSuffix(connStr, ";") {
		connStr += ";"
	}
	return connStr + key + "=" + value
}
