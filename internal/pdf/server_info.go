package pdf

import (
	"fmt"

	"github.com/a3tai/mcp-order-reader/internal/descriptions"
)

// serverInfoFileLimit caps the directory preview in ServerInfo
const serverInfoFileLimit = 10

// ToolInfo names one MCP tool and what it does
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServerInfo describes the running server for the order_server_info tool
type ServerInfo struct {
	ServerName  string     `json:"server_name"`
	Version     string     `json:"version"`
	Directory   string     `json:"directory"`
	MaxFileSize int64      `json:"max_file_size"`
	Cache       CacheStats `json:"cache"`
	// Files previews the order PDFs in Directory
	Files     []FileInfo `json:"files"`
	Truncated bool       `json:"truncated"`
	Tools     []ToolInfo `json:"tools"`
}

// ServerInfo gathers configuration, cache state, a preview of the order
// directory and the available tools
func (s *Service) ServerInfo(serverName, version string) (*ServerInfo, error) {
	found, err := s.SearchDirectory(SearchRequest{Limit: serverInfoFileLimit + 1})
	if err != nil {
		return nil, fmt.Errorf("failed to list order directory: %w", err)
	}

	info := &ServerInfo{
		ServerName:  serverName,
		Version:     version,
		Directory:   s.Directory(),
		MaxFileSize: s.maxFileSize,
		Cache:       s.CacheStats(),
		Files:       found.Files,
	}
	if len(info.Files) > serverInfoFileLimit {
		info.Files = info.Files[:serverInfoFileLimit]
		info.Truncated = true
	}

	for _, name := range descriptions.GetAllToolNames() {
		info.Tools = append(info.Tools, ToolInfo{Name: name, Description: descriptions.Summary(name)})
	}
	return info, nil
}
