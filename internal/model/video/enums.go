package video

// Status is the pipeline outcome for a video request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Stage names the pipeline step a request is in or failed at.
type Stage string

const (
	StageSelectingProvider    Stage = "selecting_provider"
	StagePreparingInputs      Stage = "preparing_inputs"
	StageSynthesizingAudio    Stage = "synthesizing_audio"
	StageSubmittingGeneration Stage = "submitting_generation"
	StagePollingGeneration    Stage = "polling_generation"
	StagePersistingResult     Stage = "persisting_result"
	StageNotifying            Stage = "notifying"
	StageDone                 Stage = "done"

	// Post-processing stages, only reached through the enhance flow.
	StageBuildingTimeline Stage = "building_timeline"
	StagePollingRender    Stage = "polling_render"
)
