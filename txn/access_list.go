package txn

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// AccessList is an ordered list of addresses and storage keys a transaction
// declares it will touch. Order is part of the signed payload.
type AccessList []AccessListItem

// AccessListItem is the element type of an access list.
type AccessListItem struct {
	Address     common.Address `json:"address"`
	StorageKeys []common.Hash  `json:"storageKeys"`
}

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, item := range al {
		sum += len(item.StorageKeys)
	}
	return sum
}

// encode writes [[address, [key, ...]], ...]. Keys are written at their full
// 32 byte width.
func (al AccessList) encode(w rlp.EncoderBuffer) {
	outer := w.List()
	for _, item := range al {
		inner := w.List()
		w.WriteBytes(item.Address[:])
		keys := w.List()
		for _, key := range item.StorageKeys {
			w.WriteBytes(key[:])
		}
		w.ListEnd(keys)
		w.ListEnd(inner)
	}
	w.ListEnd(outer)
}

// EncodeRLP implements rlp.Encoder.
func (al AccessList) EncodeRLP(out io.Writer) error {
	w := rlp.NewEncoderBuffer(out)
	al.encode(w)
	return w.Flush()
}

// DecodeRLP implements rlp.Decoder. Items carrying anything besides an
// address and a key list are rejected.
func (al *AccessList) DecodeRLP(s *rlp.Stream) error {
	if _, err := s.List(); err != nil {
		return err
	}
	list := AccessList{}
	for s.MoreDataInList() {
		var item AccessListItem
		if _, err := s.List(); err != nil {
			return err
		}
		if err := s.ReadBytes(item.Address[:]); err != nil {
			return err
		}
		if _, err := s.List(); err != nil {
			return err
		}
		item.StorageKeys = []common.Hash{}
		for s.MoreDataInList() {
			var key common.Hash
			if err := s.ReadBytes(key[:]); err != nil {
				return err
			}
			item.StorageKeys = append(item.StorageKeys, key)
		}
		if err := s.ListEnd(); err != nil {
			return err
		}
		if err := s.ListEnd(); err != nil {
			return err
		}
		list = append(list, item)
	}
	if err := s.ListEnd(); err != nil {
		return err
	}
	*al = list
	return nil
}

func (item AccessListItem) MarshalJSON() ([]byte, error) {
	type accessListItem AccessListItem
	enc := accessListItem(item)
	if enc.StorageKeys == nil {
		enc.StorageKeys = []common.Hash{}
	}
	return json.Marshal(enc)
}

// UnmarshalJSON decodes an item strictly: both keys are required and unknown
// keys are an error.
func (item *AccessListItem) UnmarshalJSON(input []byte) error {
	var dec struct {
		Address     *common.Address `json:"address"`
		StorageKeys []common.Hash   `json:"storageKeys"`
	}
	d := json.NewDecoder(bytes.NewReader(input))
	d.DisallowUnknownFields()
	if err := d.Decode(&dec); err != nil {
		return err
	}
	if dec.Address == nil {
		return errors.New("missing required field 'address' in access list item")
	}
	if dec.StorageKeys == nil {
		return errors.New("missing required field 'storageKeys' in access list item")
	}
	item.Address = *dec.Address
	item.StorageKeys = dec.StorageKeys
	return nil
}
