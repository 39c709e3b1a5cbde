package docfill

import "strings"

// splitBlock splits "${<prefix><header>}<content>${<closer>}" into header and
// content.
func splitBlock(block, prefix, closer string) (header, content string, ok bool) {
	if !strings.HasPrefix(block, "${") {
		return "", "", false
	}
	headerEnd := strings.IndexByte(block, '}')
	if headerEnd < 0 {
		return "", "", false
	}
	head := strings.TrimSpace(block[2:headerEnd])
	if !strings.HasPrefix(head, prefix) {
		return "", "", false
	}

	closeStart := strings.LastIndex(block, "${")
	if closeStart <= headerEnd || !strings.HasSuffix(block, "}") {
		return "", "", false
	}
	if strings.TrimSpace(block[closeStart+2:len(block)-1]) != closer {
		return "", "", false
	}

	return strings.TrimSpace(head[len(prefix):]), block[headerEnd+1 : closeStart], true
}
