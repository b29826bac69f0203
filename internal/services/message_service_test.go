package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"
)

func TestSendMessage(t *testing.T) {
	repo := newFakeMessageRepo()
	broadcaster := &recordingBroadcaster{}
	service := NewMessageService(repo, broadcaster)

	message, err := service.SendMessage(context.Background(), "user-1", models.MessageRequest{
		ReceiverID: "user-2",
		Content:    "hello",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if message.SenderID != "user-1" || message.ReceiverID != "user-2" || message.Content != "hello" {
		t.Fatalf("message fields not recorded: %+v", message)
	}
	if message.Read {
		t.Fatal("new message must start unread")
	}

	events := broadcaster.published()
	if len(events) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(events))
	}
	if events[0].Room != UserRoom("user-2") || events[0].Event != NewMessageEvent {
		t.Fatalf("message must go to the receiver room, got %s/%s", events[0].Room, events[0].Event)
	}
}

func TestSendMessageValidation(t *testing.T) {
	service := NewMessageService(newFakeMessageRepo(), NopBroadcaster{})

	_, err := service.SendMessage(context.Background(), "user-1", models.MessageRequest{Content: "hello"})
	assertTypedError(t, err, http.StatusBadRequest)

	_, err = service.SendMessage(context.Background(), "user-1", models.MessageRequest{ReceiverID: "user-2", Content: "   "})
	resp := assertTypedError(t, err, http.StatusBadRequest)
	if resp.Message != "message content must not be empty" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestGetConversation(t *testing.T) {
	repo := newFakeMessageRepo()
	service := NewMessageService(repo, NopBroadcaster{})

	// Все сообщения получают одну и ту же метку времени: порядок должен
	// определяться порядком вставки.
	stamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return stamp }

	contents := []string{"first", "second", "third"}
	for i, content := range contents {
		sender, receiver := "user-1", "user-2"
		if i%2 == 1 {
			sender, receiver = receiver, sender
		}
		if _, err := service.SendMessage(context.Background(), sender, models.MessageRequest{ReceiverID: receiver, Content: content}); err != nil {
			t.Fatalf("send message: %v", err)
		}
	}
	// Чужая переписка не должна попасть в выборку.
	if _, err := service.SendMessage(context.Background(), "user-3", models.MessageRequest{ReceiverID: "user-1", Content: "other"}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	conversation, err := service.GetConversation(context.Background(), "user-1", "user-2")
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if len(conversation) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(conversation))
	}
	for i, content := range contents {
		if conversation[i].Content != content {
			t.Fatalf("expected %q at %d, got %q", content, i, conversation[i].Content)
		}
	}

	_, err = service.GetConversation(context.Background(), "user-1", "")
	assertTypedError(t, err, http.StatusBadRequest)
}

func TestMarkRead(t *testing.T) {
	repo := newFakeMessageRepo()
	service := NewMessageService(repo, NopBroadcaster{})

	for _, content := range []string{"one", "two"} {
		if _, err := service.SendMessage(context.Background(), "user-2", models.MessageRequest{ReceiverID: "user-1", Content: content}); err != nil {
			t.Fatalf("send message: %v", err)
		}
	}
	// Исходящее сообщение читателя не учитывается.
	if _, err := service.SendMessage(context.Background(), "user-1", models.MessageRequest{ReceiverID: "user-2", Content: "reply"}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	updated, err := service.MarkRead(context.Background(), "user-1", "user-2")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 messages marked, got %d", updated)
	}

	// Повторный вызов ничего не меняет.
	updated, err = service.MarkRead(context.Background(), "user-1", "user-2")
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if updated != 0 {
		t.Fatalf("second call must be a no-op, got %d", updated)
	}

	_, err = service.MarkRead(context.Background(), "user-1", "")
	assertTypedError(t, err, http.StatusBadRequest)
}

func TestGetThreads(t *testing.T) {
	repo := newFakeMessageRepo()
	service := NewMessageService(repo, NopBroadcaster{})

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	send := func(sender, receiver, content string) {
		t.Helper()
		if _, err := service.SendMessage(context.Background(), sender, models.MessageRequest{ReceiverID: receiver, Content: content}); err != nil {
			t.Fatalf("send message: %v", err)
		}
	}
	send("user-2", "user-1", "hi")
	send("user-1", "user-2", "hey")
	send("user-3", "user-1", "ping")
	send("user-3", "user-1", "ping again")

	threads, err := service.GetThreads(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get threads: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].CounterpartID != "user-3" || threads[1].CounterpartID != "user-2" {
		t.Fatalf("threads must order by last activity desc, got %s then %s", threads[0].CounterpartID, threads[1].CounterpartID)
	}
	if threads[0].UnreadCount != 2 {
		t.Fatalf("expected 2 unread from user-3, got %d", threads[0].UnreadCount)
	}
	if threads[0].LastMessage.Content != "ping again" {
		t.Fatalf("thread must carry the latest message, got %q", threads[0].LastMessage.Content)
	}
	if threads[1].UnreadCount != 1 {
		t.Fatalf("expected 1 unread from user-2, got %d", threads[1].UnreadCount)
	}

	if _, err := service.MarkRead(context.Background(), "user-1", "user-3"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	threads, err = service.GetThreads(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get threads: %v", err)
	}
	if threads[0].UnreadCount != 0 {
		t.Fatalf("unread must reset after mark read, got %d", threads[0].UnreadCount)
	}

	empty, err := service.GetThreads(context.Background(), "user-4")
	if err != nil {
		t.Fatalf("get threads for stranger: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no threads, got %+v", empty)
	}
}
