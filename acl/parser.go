package acl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// The document format follows the ss-libev ACL files: one rule per
// line, '#' comments, section headers in brackets. [proxy_all] and
// [bypass_all] switch the default mode, the remaining sections select
// the list the following rules go into.
const (
	sectionProxyAll      = "[proxy_all]"
	sectionAcceptAll     = "[accept_all]"
	sectionBypassAll     = "[bypass_all]"
	sectionRejectAll     = "[reject_all]"
	sectionBypassList    = "[bypass_list]"
	sectionProxyList     = "[proxy_list]"
	sectionOutboundBlock = "[outbound_block_list]"
	sectionClientBlock   = "[black_list]"
)

// ParseFile loads an ACL document from a file.
func ParseFile(path string) (*AccessList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open acl file: %w", err)
	}
	defer file.Close()

	acl, err := ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("cannot parse acl file %s: %w", path, err)
	}

	return acl, nil
}

// ParseReader loads an ACL document from a reader.
func ParseReader(reader io.Reader) (*AccessList, error) {
	acl := New(ModeProxyAll)
	add := acl.AddBypassRule
	lineNo := 0

	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case sectionProxyAll, sectionAcceptAll:
			acl.mode = ModeProxyAll

			continue
		case sectionBypassAll, sectionRejectAll:
			acl.mode = ModeBypassAll

			continue
		case sectionBypassList:
			add = acl.AddBypassRule

			continue
		case sectionProxyList:
			add = acl.AddProxyRule

			continue
		case sectionOutboundBlock:
			add = acl.AddOutboundBlockRule

			continue
		case sectionClientBlock:
			add = acl.AddClientBlockRule

			continue
		}

		if strings.HasPrefix(line, "[") {
			return nil, fmt.Errorf("unknown section %s on line %d", line, lineNo)
		}

		if err := add(line); err != nil {
			return nil, fmt.Errorf("incorrect rule on line %d: %w", lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read acl document: %w", err)
	}

	return acl, nil
}
