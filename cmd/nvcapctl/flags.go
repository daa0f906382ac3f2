package main

import (
	"fmt"
	"strconv"
	"strings"
)

// displayList collects 1-based display numbers given as "1,3" or by
// repeating the flag.
type displayList []int

func (l *displayList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, n := range *l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (l *displayList) Set(v string) error {
	for _, field := range strings.Split(v, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid display number %q", field)
		}
		if n < 1 {
			return fmt.Errorf("display number %d must be 1 or greater", n)
		}
		*l = append(*l, n)
	}
	return nil
}

// optBool is a boolean flag that remembers whether it was given.
type optBool struct {
	set   bool
	value bool
}

func (b *optBool) String() string {
	if b == nil || !b.set {
		return ""
	}
	return strconv.FormatBool(b.value)
}

func (b *optBool) Set(v string) error {
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	b.set, b.value = true, parsed
	return nil
}

func (b *optBool) IsBoolFlag() bool { return true }

// optUint8 accepts decimal or 0x-prefixed values.
type optUint8 struct {
	set   bool
	value uint8
}

func (u *optUint8) String() string {
	if u == nil || !u.set {
		return ""
	}
	return fmt.Sprintf("%#x", u.value)
}

func (u *optUint8) Set(v string) error {
	parsed, err := strconv.ParseUint(strings.TrimSpace(v), 0, 8)
	if err != nil {
		return fmt.Errorf("invalid byte value %q", v)
	}
	u.set, u.value = true, uint8(parsed)
	return nil
}
