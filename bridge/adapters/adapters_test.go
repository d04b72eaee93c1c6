package adapters

import "testing"

func TestFakeSideAPushAndSend(t *testing.T) {
	a := NewFakeSideA[string]()
	a.PushAudio("alice", 0, []byte{1, 2, 3})
	a.PushAudio("alice", 1, []byte{4, 5, 6})

	got := <-a.Events()
	if got.Speaker != "alice" || got.Sequence != 0 {
		t.Fatalf("first event = %+v, want alice/0", got)
	}

	if err := a.Send([]byte{9, 9}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := a.Sent()
	if len(sent) != 1 || len(sent[0]) != 2 {
		t.Fatalf("Sent() = %v, want one 2-byte frame", sent)
	}

	a.Close()
	<-a.Events() // the second pushed packet is still buffered
	if _, open := <-a.Events(); open {
		t.Fatal("Events() channel still open after Close")
	}
	select {
	case <-a.Done():
	default:
		t.Fatal("Done() not closed after Close")
	}
}

func TestFakeSideAPushAudioRTPRoundTrips(t *testing.T) {
	a := NewFakeSideA[string]()
	payload := []byte{0xf8, 0xff, 0xfe}
	if err := a.PushAudioRTP("bob", 42, 96000, 0xdeadbeef, payload); err != nil {
		t.Fatalf("PushAudioRTP: %v", err)
	}

	got := <-a.Events()
	if got.Speaker != "bob" || got.Sequence != 42 {
		t.Fatalf("event = %+v, want speaker=bob sequence=42", got)
	}
	if string(got.Payload) != string(payload) {
		t.Fatalf("payload after RTP round-trip = %v, want %v", got.Payload, payload)
	}
}

// TestFakeSideBSpeakingAndLeftBypassAudioChannel confirms speaking-state and
// participant-left notifications reach their registered callbacks directly,
// never landing on Events(), the same separation adapters.SideB requires of
// a real transport.
func TestFakeSideBSpeakingAndLeftBypassAudioChannel(t *testing.T) {
	b := NewFakeSideB[uint32]()

	var gotSSRC uint32
	var gotSpeaking uint32
	b.OnSpeakingUpdate(func(ssrc uint32, speaker uint32) {
		gotSSRC = ssrc
		gotSpeaking = speaker
	})
	var gotLeft uint32
	leftCalled := false
	b.OnParticipantLeft(func(speaker uint32) {
		gotLeft = speaker
		leftCalled = true
	})

	b.PushSpeakingUpdate(555, 7)
	if gotSSRC != 555 || gotSpeaking != 7 {
		t.Fatalf("OnSpeakingUpdate callback got ssrc=%d speaker=%d, want 555/7", gotSSRC, gotSpeaking)
	}

	b.PushAudio(7, 0, []byte{1, 2})
	b.PushParticipantLeft(7)
	if !leftCalled || gotLeft != 7 {
		t.Fatalf("OnParticipantLeft callback not invoked with speaker 7")
	}

	b.Close()
	ev, open := <-b.Events()
	if !open || ev.Speaker != 7 || ev.Sequence != 0 {
		t.Fatalf("Events() first item = %+v (open=%v), want the single audio packet", ev, open)
	}
	if _, open := <-b.Events(); open {
		t.Fatal("Events() carried more than the one audio packet pushed")
	}
}
