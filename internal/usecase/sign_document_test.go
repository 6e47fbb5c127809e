package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"custodia/internal/domain"
)

func newSignDocument(store *memStore, policy SealPolicy) *SignDocument {
	clock := fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	return &SignDocument{
		UoW:    &memUoW{store: store},
		Hash:   &HashEngine{Clock: clock},
		Ledger: &SignatureLedger{Clock: clock},
		Seals:  &SealIssuer{Policy: policy, Clock: clock},
	}
}

func validSignDocumentRequest() SignDocumentRequest {
	return SignDocumentRequest{
		DocumentID:  "doc-1",
		Bytes:       []byte("hello"),
		Signer:      domain.Identity{ID: "user-1", Email: "jperez@spi.gob", Role: "analista"},
		ConsentText: "Acepto firmar este documento con firma avanzada",
		RoleAtSign:  "analista",
		SealRole:    "jefe_comercial",
		Meta: domain.RequestMeta{
			NetworkAddress: "10.0.0.8",
			UserAgent:      "custodia-test",
			SessionID:      "s1",
		},
	}
}

func TestSignDocument_Execute(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	uc := newSignDocument(store, allowAllPolicy{})

	resp, err := uc.Execute(context.Background(), validSignDocumentRequest())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if resp.Fingerprint.DigestHex != helloDigest {
		t.Fatalf("digest = %s", resp.Fingerprint.DigestHex)
	}
	if resp.Signature.FingerprintID != resp.Fingerprint.ID {
		t.Fatal("signature not bound to fingerprint")
	}
	if resp.Seal.FingerprintID != resp.Fingerprint.ID {
		t.Fatal("seal not bound to fingerprint")
	}
	if resp.Seal.AuthorizedRole != "jefe_comercial" {
		t.Fatalf("seal role = %s", resp.Seal.AuthorizedRole)
	}
	if store.docs["doc-1"].State != domain.DocumentStateLocked {
		t.Fatalf("document state = %s, want locked", store.docs["doc-1"].State)
	}

	events := store.events["doc-1"]
	wantOrder := []domain.ChainEventType{
		domain.ChainEventHashCreated,
		domain.ChainEventDocumentSigned,
		domain.ChainEventDocumentLocked,
		domain.ChainEventSealApplied,
	}
	if len(events) != len(wantOrder) {
		t.Fatalf("events = %d, want %d", len(events), len(wantOrder))
	}
	for i, want := range wantOrder {
		if events[i].EventType != want {
			t.Fatalf("event %d = %s, want %s", i, events[i].EventType, want)
		}
		if events[i].Seq != int64(i+1) {
			t.Fatalf("event %d seq = %d", i, events[i].Seq)
		}
	}
	if err := VerifyDocumentChain(context.Background(), store.Chain(), "doc-1"); err != nil {
		t.Fatalf("chain verification after signing: %v", err)
	}
}

func TestSignDocument_SealRoleDefaultsToSignerRole(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	uc := newSignDocument(store, allowAllPolicy{})

	req := validSignDocumentRequest()
	req.SealRole = ""
	resp, err := uc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resp.Seal.AuthorizedRole != "analista" {
		t.Fatalf("seal role = %s, want role at sign", resp.Seal.AuthorizedRole)
	}
}

func TestSignDocument_RollsBackOnSealDenial(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	uc := newSignDocument(store, denyAllPolicy{})

	_, err := uc.Execute(context.Background(), validSignDocumentRequest())
	if !errors.Is(err, domain.ErrSealRoleNotAllowed) {
		t.Fatalf("err = %v, want ErrSealRoleNotAllowed", err)
	}

	// Nothing from the failed unit of work may survive.
	if len(store.fps) != 0 {
		t.Fatalf("fingerprints = %d, want 0", len(store.fps))
	}
	if len(store.sigs) != 0 {
		t.Fatalf("signatures = %d, want 0", len(store.sigs))
	}
	if len(store.events["doc-1"]) != 0 {
		t.Fatalf("events = %d, want 0", len(store.events["doc-1"]))
	}
	if store.docs["doc-1"].State != domain.DocumentStateDraft {
		t.Fatalf("document state = %s, want draft", store.docs["doc-1"].State)
	}
}

func TestSignDocument_SecondSignRejected(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	uc := newSignDocument(store, allowAllPolicy{})

	if _, err := uc.Execute(context.Background(), validSignDocumentRequest()); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	before := len(store.events["doc-1"])

	_, err := uc.Execute(context.Background(), validSignDocumentRequest())
	if !errors.Is(err, domain.ErrDocumentLocked) {
		t.Fatalf("err = %v, want ErrDocumentLocked", err)
	}
	if len(store.events["doc-1"]) != before {
		t.Fatalf("events changed from %d to %d on failed sign", before, len(store.events["doc-1"]))
	}
}

func TestSignDocument_Unauthenticated(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	uc := newSignDocument(store, allowAllPolicy{})

	req := validSignDocumentRequest()
	req.Signer = domain.Identity{}
	if _, err := uc.Execute(context.Background(), req); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}
