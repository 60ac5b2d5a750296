// Package invite reads and writes the OPENPGP4FPR invitation codes shown as
// QR codes by an inviter.
//
// A contact invite looks like
//
//	OPENPGP4FPR:<FINGERPRINT>#a=<addr>&n=<name>&i=<invitenumber>&s=<authcode>
//
// and a group invite additionally carries x=<group id> and g=<group name>.
package invite
