package models

// SuspectBucket is one taxonomy rule: a failure category and its detection pattern.
type SuspectBucket struct {
	Name    string `yaml:"name" json:"name"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// SuspectScore is the number of events that matched a bucket during one run.
type SuspectScore struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
