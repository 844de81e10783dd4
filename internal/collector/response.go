package collector

// importRequest is the body of POST /import.
type importRequest struct {
	URL string `json:"url"`
}

// importResponse is the normalized recipe returned by POST /import. Every
// field is optional.
type importResponse struct {
	Title          string     `json:"title"`
	Image          string     `json:"image"`
	TimeMinutes    *int       `json:"timeMinutes"`
	SourcePlatform string     `json:"sourcePlatform"`
	Author         string     `json:"author"`
	SourceLink     string     `json:"sourceLink"`
	Ingredients    []string   `json:"ingredients"`
	Steps          []string   `json:"steps"`
	Nutrition      *nutrition `json:"nutrition"`
}

type nutrition struct {
	Calories *int `json:"calories"`
}
