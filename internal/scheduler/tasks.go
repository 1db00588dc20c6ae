package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskPostalCodeMirror = "postalcodes.mirror"

type PostalCodeMirrorPayload struct {
	City   string `json:"city"`
	Region string `json:"region"`
	Code   string `json:"code"`
}

func NewPostalCodeMirrorTask(payload PostalCodeMirrorPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPostalCodeMirror, data), nil
}

func ParsePostalCodeMirrorPayload(task *asynq.Task) (PostalCodeMirrorPayload, error) {
	var payload PostalCodeMirrorPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PostalCodeMirrorPayload{}, err
	}
	return payload, nil
}
