package model

type NewProjectRequestBody struct {
	Voicebank string  `json:"voicebank"`
	Name      string  `json:"name"`
	Tempo     float64 `json:"tempo"`
}

type NewProjectResponse struct {
	Id string `json:"id"`
}

type RemoveNotesRequestBody struct {
	Positions []int `json:"positions"`
}

type StandardizeRequestBody struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

type PitchResponse struct {
	FirstStep int    `json:"first_step"`
	LastStep  int    `json:"last_step"`
	Pitch     string `json:"pitch"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

// RenderedNote is the pitch curve a resampler needs for one note.
type RenderedNote struct {
	Position     int     `json:"position"`
	TrueLyric    string  `json:"true_lyric"`
	Length       int     `json:"length"`
	RealPreutter float64 `json:"real_preutter"`
	RealOverlap  float64 `json:"real_overlap"`
	Pitch        string  `json:"pitch"`
}
