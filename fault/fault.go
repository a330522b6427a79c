// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	ExistsError       GenericError
	InvalidError      GenericError
	NotEmptyError     GenericError
	NotFoundError     GenericError
	ProcessError      GenericError
	ReentrantError    GenericError
	UnauthorizedError GenericError
	WrongAmountError  GenericError
)

// common errors - keep in alphabetic order
var (
	ErrAlreadyEmployed          = ExistsError("identity is already employed by a business")
	ErrAlreadyHighestBidder     = InvalidError("caller is already the highest bidder")
	ErrAlreadyInBusiness        = ExistsError("item already belongs to a business")
	ErrAlreadyInCollection      = ExistsError("asset already belongs to a collection")
	ErrAlreadyInitialised       = ExistsError("already initialised")
	ErrAlreadyInUnassignedPool  = ExistsError("asset is already in the unassigned pool")
	ErrAlreadyOnAuction         = ExistsError("asset is already on auction")
	ErrAssetAlreadyListed       = InvalidError("asset is already listed")
	ErrAssetNotFound            = NotFoundError("asset id does not exist")
	ErrAssetNotListed           = InvalidError("asset is not listed")
	ErrAssetSold                = InvalidError("asset is already sold")
	ErrAuctionEnded             = InvalidError("auction has already ended")
	ErrAuctionNotEnded          = InvalidError("auction has not ended yet")
	ErrAuctionNotFound          = NotFoundError("no active auction for asset")
	ErrBidderIsSeller           = InvalidError("seller cannot bid on own auction")
	ErrBidTooLow                = InvalidError("bid does not exceed current highest bid")
	ErrBusinessNotEmpty         = NotEmptyError("business still has members")
	ErrBusinessNotFound         = NotFoundError("business id does not exist")
	ErrCannotDecodeAccount      = ProcessError("cannot decode account")
	ErrCollectionNotEmpty       = NotEmptyError("collection still has assets")
	ErrCollectionNotFound       = NotFoundError("collection id does not exist")
	ErrCorruptedRecord          = ProcessError("stored record cannot be unpacked")
	ErrEmployeeNotFound         = NotFoundError("identity is not an employee of the business")
	ErrFeePercentOutOfRange     = InvalidError("fee percent must be in range 0 to 100")
	ErrInsufficientFunds        = InvalidError("insufficient funds for transfer")
	ErrInvalidChecksum          = ProcessError("invalid account checksum")
	ErrInvalidSignature         = InvalidError("invalid signature")
	ErrMarketplaceAlreadySet    = ExistsError("marketplace identity is already registered")
	ErrMarketplaceNotRegistered = InvalidError("marketplace identity is not registered")
	ErrNotAdministrator         = UnauthorizedError("caller is not the administrator")
	ErrNotBusinessAdmin         = UnauthorizedError("caller is not the business admin")
	ErrNotCollectionOwner       = UnauthorizedError("caller is not the collection owner")
	ErrNotHighestBidder         = UnauthorizedError("caller is not the highest bidder")
	ErrNotInBusiness            = NotFoundError("item does not belong to the business")
	ErrNotInCollection          = NotFoundError("asset does not belong to the collection")
	ErrNotInitialised           = InvalidError("not initialised")
	ErrNotInUnassignedPool      = NotFoundError("asset is not in the unassigned pool")
	ErrNotMarketplace           = UnauthorizedError("caller is not the marketplace")
	ErrNotOwner                 = UnauthorizedError("caller is not the owner of the asset")
	ErrNotPublicKey             = ProcessError("not a public key")
	ErrNotSeller                = UnauthorizedError("caller is not the seller of the asset")
	ErrOwnershipMismatch        = UnauthorizedError("item is not owned by business admin or employee")
	ErrReentrantCall            = ReentrantError("reentrant call rejected")
	ErrWrongPaymentAmount       = WrongAmountError("payment amount does not match the price")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string       { return string(e) }
func (e InvalidError) Error() string      { return string(e) }
func (e NotEmptyError) Error() string     { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e ProcessError) Error() string      { return string(e) }
func (e ReentrantError) Error() string    { return string(e) }
func (e UnauthorizedError) Error() string { return string(e) }
func (e WrongAmountError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool       { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool      { _, ok := e.(InvalidError); return ok }
func IsErrNotEmpty(e error) bool     { _, ok := e.(NotEmptyError); return ok }
func IsErrNotFound(e error) bool     { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool      { _, ok := e.(ProcessError); return ok }
func IsErrReentrant(e error) bool    { _, ok := e.(ReentrantError); return ok }
func IsErrUnauthorized(e error) bool { _, ok := e.(UnauthorizedError); return ok }
func IsErrWrongAmount(e error) bool  { _, ok := e.(WrongAmountError); return ok }
