// Package events defines the typed conversation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - transcript.*
//   - assistant_response.*
//   - turn_state.*
//   - notification
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Updated: point-in-time snapshot that can change over time.
//   - Final: terminal immutable text/state for the current turn.
//
// transcript events
//
//   - UserTurnAdded (transcript.user_turn_added): a user turn was recorded,
//     before any network activity.
//   - TranscriptUpdated (transcript.updated): snapshot of the full transcript
//     after any change; the last turn may be in progress.
//   - TranscriptCleared (transcript.cleared): history was reset.
//
// assistant_response events
//
//   - AssistantResponseStarted (assistant_response.started): first delta of
//     the reply arrived and the assistant turn was created.
//   - AssistantResponseSegment (assistant_response.segment): one delta, with
//     the accumulated content so far.
//   - AssistantResponseFinal (assistant_response.final): the assistant turn
//     stopped changing; it may be interrupted.
//
// turn_state events
//
//   - TurnLoadingChanged (turn_state.loading_changed): a request started or
//     finished.
//   - TurnCompleted (turn_state.completed): the endpoint finished the reply.
//   - TurnCancelled (turn_state.cancelled): the request was cancelled.
//   - TurnFailed (turn_state.failed): the request failed with a classified
//     error.
//
// notification events
//
//   - Notification (notification): user-facing copy for a failure, emitted
//     once per failed request.
package events
