package parser

import "bytes"

// ERBToRuby blanks out everything in an ERB template except the Ruby code in
// <% %> tags, keeping byte offsets and line breaks so locations still point
// into the template. Comment tags (<%#) are blanked too.
func ERBToRuby(source []byte) []byte {
	out := make([]byte, len(source))
	for i, c := range source {
		if c == '\n' {
			out[i] = '\n'
		} else {
			out[i] = ' '
		}
	}

	pos := 0
	for {
		start := bytes.Index(source[pos:], []byte("<%"))
		if start < 0 {
			break
		}
		start += pos
		codeStart := start + 2
		comment := false
		if codeStart < len(source) {
			switch source[codeStart] {
			case '=', '-':
				codeStart++
			case '#':
				comment = true
			case '%':
				// "<%%" is a literal "<%"
				pos = codeStart + 1
				continue
			}
		}

		end := bytes.Index(source[codeStart:], []byte("%>"))
		if end < 0 {
			end = len(source)
		} else {
			end += codeStart
		}
		codeEnd := end
		if codeEnd > codeStart && source[codeEnd-1] == '-' {
			codeEnd--
		}

		if !comment {
			copy(out[codeStart:codeEnd], source[codeStart:codeEnd])
			if end < len(source) {
				// terminate the statement so adjacent tags don't run together
				out[end] = ';'
			}
		}

		if end >= len(source) {
			break
		}
		pos = end + 2
	}
	return out
}
