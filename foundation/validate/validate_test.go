package validate_test

import (
	"testing"

	"github.com/ardanlabs/puffin/foundation/blockchain/signature"
	"github.com/ardanlabs/puffin/foundation/validate"
)

type send struct {
	Receiver string `json:"reciever" validate:"required,account"`
	Amount   uint64 `json:"amount" validate:"required,gt=0"`
}

func Test_Check(t *testing.T) {
	pk, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	good := send{Receiver: signature.PublicKeyHex(&pk.PublicKey), Amount: 10}
	if err := validate.Check(good); err != nil {
		t.Fatalf("Should accept a valid model: %s", err)
	}

	err = validate.Check(send{Receiver: "bob"})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get back field errors: %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["reciever"]; !exists {
		t.Fatalf("Should report the receiver by its json name: %v", fields)
	}
	if _, exists := fields["amount"]; !exists {
		t.Fatalf("Should report the missing amount: %v", fields)
	}
}
