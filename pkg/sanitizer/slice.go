package sanitizer

import "strings"

// NormalizeStringSlice applies normalizer to every item, dropping empty results
// and case-insensitive duplicates. The first spelling wins.
func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)
		if normalized == "" {
			continue
		}

		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}

		seen[key] = true
		result = append(result, normalized)
	}

	return result
}

func NormalizeAmenities(amenities []string) []string {
	return NormalizeStringSlice(amenities, TrimAndNormalize)
}

func NormalizeImageURLs(images []string) []string {
	return NormalizeStringSlice(images, NormalizeURL)
}
