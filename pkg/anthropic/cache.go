package anthropic

// BuildCachedSystemBlocks wraps a system prompt that is sent unchanged with
// every request in a single block marked for prompt caching. An empty ttl
// uses the API default (5m).
func BuildCachedSystemBlocks(text, ttl string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: ttl},
		},
	}
}
