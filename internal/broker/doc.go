// Package broker routes messages between clients.
//
// Every participant, whether a frontend or a session, is a Client with a
// numeric id and a bounded inbox. Clients send Messages to the broker, which
// forwards General kinds to the destination's inbox and handles Broker kinds
// itself: creating clients, spawning sessions and freeing slots. Client ids
// come from a slot array with a free list, so ids are reused after Shutdown.
//
// Messages between one source and one destination arrive in send order. A
// full inbox makes the sender wait.
package broker
