package entity

// Tracks maps each stem to its relative download path
type Tracks map[Stem]string

type SeparationResult struct {
	JobID  JobID  `json:"job_id"`
	Tracks Tracks `json:"tracks"`
}

type CompletedEvent struct {
	JobID    JobID  `json:"job_id"`
	FileName string `json:"file_name"`
	Stems    []Stem `json:"stems"`
	Tracks   Tracks `json:"tracks"`
}

type Health struct {
	Status         string `json:"status"`
	TorchAvailable bool   `json:"torch_available"`
}
