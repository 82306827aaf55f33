package utils

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSuccessEnvelope(t *testing.T) {
	body := Success(gin.H{"recordingId": "rec_1"})
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	if body["recordingId"] != "rec_1" {
		t.Errorf("payload field lost: %v", body)
	}
}

func TestSuccessNilPayload(t *testing.T) {
	body := Success(nil)
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
}

func TestFailureEnvelope(t *testing.T) {
	body := Failure("No audio file provided")
	if body["success"] != false {
		t.Errorf("expected success false, got %v", body["success"])
	}
	if body["error"] != "No audio file provided" {
		t.Errorf("error message lost: %v", body)
	}
}
