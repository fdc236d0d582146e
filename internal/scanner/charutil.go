package scanner

func IsDigit[T byte | rune](b T) bool {
	return b >= '0' && b <= '9'
}

func IsHex[T byte | rune](b T) bool {
	return IsDigit(b) || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

// IsCtrl reports whether b is a control character, which JSON does not allow
// unescaped in strings.
func IsCtrl[T byte | rune](b T) bool {
	return b < 0x20
}
