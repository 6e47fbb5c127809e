package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"
)

func testFingerprint(store *memStore, documentID string) domain.Fingerprint {
	fp := domain.Fingerprint{
		ID:         "fp-1",
		DocumentID: documentID,
		Version:    1,
		Algorithm:  domain.FingerprintAlgorithm,
		DigestHex:  helloDigest,
		Current:    true,
		CreatedBy:  "user-1",
		CreatedAt:  time.Now().UTC(),
	}
	store.fps[fp.ID] = fp
	return fp
}

func validSignRequest(fp domain.Fingerprint) SignRequest {
	return SignRequest{
		Fingerprint: fp,
		Signer:      domain.Identity{ID: "user-1", Email: "jperez@spi.gob", Role: "analista"},
		ConsentText: "Acepto firmar este documento con firma avanzada",
		RoleAtSign:  "analista",
		Meta: domain.RequestMeta{
			NetworkAddress: "10.0.0.8",
			UserAgent:      "custodia-test",
			SessionID:      "s1",
		},
	}
}

func TestSignatureLedger_Sign(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	fp := testFingerprint(store, "doc-1")
	signedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ledger := &SignatureLedger{Clock: fixedClock(signedAt)}

	sig, err := ledger.Sign(context.Background(), store, validSignRequest(fp))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	wantHash := cryptoinfra.SHA256Hex([]byte(helloDigest + "user-1" + signedAt.Format(time.RFC3339) + "s1"))
	if sig.SignatureHash != wantHash {
		t.Fatalf("signature hash = %s, want %s", sig.SignatureHash, wantHash)
	}
	if sig.RoleAtSign != "analista" {
		t.Fatalf("role = %s", sig.RoleAtSign)
	}

	if store.docs["doc-1"].State != domain.DocumentStateLocked {
		t.Fatalf("document state = %s, want locked", store.docs["doc-1"].State)
	}
	events := store.events["doc-1"]
	if len(events) != 2 {
		t.Fatalf("events = %d, want signed + locked", len(events))
	}
	if events[0].EventType != domain.ChainEventDocumentSigned {
		t.Fatalf("first event = %s", events[0].EventType)
	}
	if events[1].EventType != domain.ChainEventDocumentLocked {
		t.Fatalf("second event = %s", events[1].EventType)
	}
}

func TestSignatureLedger_RoleDefaultsToSignerRole(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	fp := testFingerprint(store, "doc-1")
	ledger := &SignatureLedger{}

	req := validSignRequest(fp)
	req.RoleAtSign = ""
	sig, err := ledger.Sign(context.Background(), store, req)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if sig.RoleAtSign != "analista" {
		t.Fatalf("role = %s, want signer role", sig.RoleAtSign)
	}
}

func TestSignatureLedger_Unauthenticated(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	fp := testFingerprint(store, "doc-1")
	ledger := &SignatureLedger{}

	req := validSignRequest(fp)
	req.Signer = domain.Identity{}
	if _, err := ledger.Sign(context.Background(), store, req); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestSignatureLedger_ConsentRequired(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	fp := testFingerprint(store, "doc-1")
	ledger := &SignatureLedger{}

	for _, consent := range []string{"", "   \t\n"} {
		req := validSignRequest(fp)
		req.ConsentText = consent
		if _, err := ledger.Sign(context.Background(), store, req); !errors.Is(err, domain.ErrConsentRequired) {
			t.Fatalf("consent %q: err = %v, want ErrConsentRequired", consent, err)
		}
	}
}

func TestSignatureLedger_TraceabilityRequired(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	fp := testFingerprint(store, "doc-1")
	ledger := &SignatureLedger{}

	req := validSignRequest(fp)
	req.Meta.SessionID = ""
	if _, err := ledger.Sign(context.Background(), store, req); !errors.Is(err, domain.ErrTraceabilityRequired) {
		t.Fatalf("err = %v, want ErrTraceabilityRequired", err)
	}
}

func TestSignatureLedger_DocumentLocked(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateLocked)
	fp := testFingerprint(store, "doc-1")
	ledger := &SignatureLedger{}

	if _, err := ledger.Sign(context.Background(), store, validSignRequest(fp)); !errors.Is(err, domain.ErrDocumentLocked) {
		t.Fatalf("err = %v, want ErrDocumentLocked", err)
	}
}

func TestSignatureLedger_DuplicateSignature(t *testing.T) {
	store := newMemStore()
	store.addDocument("doc-1", domain.DocumentStateDraft)
	fp := testFingerprint(store, "doc-1")
	ledger := &SignatureLedger{}

	if _, err := ledger.Sign(context.Background(), store, validSignRequest(fp)); err != nil {
		t.Fatalf("first sign: %v", err)
	}
	// Unlock to isolate the duplicate check from the lock check.
	doc := store.docs["doc-1"]
	doc.State = domain.DocumentStateDraft
	store.docs["doc-1"] = doc

	if _, err := ledger.Sign(context.Background(), store, validSignRequest(fp)); !errors.Is(err, domain.ErrDuplicateSignature) {
		t.Fatalf("err = %v, want ErrDuplicateSignature", err)
	}
}
